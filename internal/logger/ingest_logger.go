// Package logger provides ingestion audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// IngestLogger provides dedicated logging for game ingestion events.
type IngestLogger struct {
	*logrus.Entry
}

// NewIngestLogger creates a new ingestion logger.
func NewIngestLogger(baseLogger *logrus.Logger) *IngestLogger {
	return &IngestLogger{
		Entry: baseLogger.WithField("component", "ingest"),
	}
}

// LogGameRecorded logs a single ingested game result.
func (il *IngestLogger) LogGameRecorded(gameID, white, black, outcome, source string, playedOn time.Time) {
	il.WithFields(logrus.Fields{
		"game_id":   gameID,
		"white":     white,
		"black":     black,
		"outcome":   outcome,
		"source":    source,
		"played_on": playedOn.Format("2006-01-02"),
	}).Info("Game result recorded")
}

// LogBatchComplete logs a completed ingestion batch.
func (il *IngestLogger) LogBatchComplete(source string, fetched, accepted, rejected int, durationMs float64) {
	il.WithFields(logrus.Fields{
		"source":      source,
		"fetched":     fetched,
		"accepted":    accepted,
		"rejected":    rejected,
		"duration_ms": durationMs,
	}).Info("Ingestion batch completed")
}

// LogRejectedRecord logs a record rejected during normalization.
func (il *IngestLogger) LogRejectedRecord(source, externalID, reason string) {
	il.WithFields(logrus.Fields{
		"source":      source,
		"external_id": externalID,
		"reason":      reason,
	}).Warn("Game record rejected")
}
