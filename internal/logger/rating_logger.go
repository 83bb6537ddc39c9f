// Package logger provides rating-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// RatingLogger provides dedicated logging for rating computation events.
type RatingLogger struct {
	*logrus.Entry
}

// NewRatingLogger creates a new rating logger.
func NewRatingLogger(baseLogger *logrus.Logger) *RatingLogger {
	return &RatingLogger{
		Entry: baseLogger.WithField("component", "rating"),
	}
}

// LogRecomputeStart logs the start of a full rating recompute.
func (rl *RatingLogger) LogRecomputeStart(players, games int) {
	rl.WithFields(logrus.Fields{
		"players": players,
		"games":   games,
	}).Info("Rating recompute started")
}

// LogRecomputeComplete logs a completed rating recompute.
func (rl *RatingLogger) LogRecomputeComplete(players, games, passes int, logLikelihood, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"players":        players,
		"games":          games,
		"passes":         passes,
		"log_likelihood": logLikelihood,
		"duration_ms":    durationMs,
	}).Info("Rating recompute completed")
}

// LogConvergence logs the optimizer reaching its convergence tolerance.
func (rl *RatingLogger) LogConvergence(passes int, delta, tolerance float64) {
	rl.WithFields(logrus.Fields{
		"passes":    passes,
		"delta":     delta,
		"tolerance": tolerance,
	}).Debug("Rating optimizer converged")
}

// LogInstability logs a numerically unstable trajectory.
func (rl *RatingLogger) LogInstability(player, reason string) {
	rl.WithFields(logrus.Fields{
		"player": player,
		"reason": reason,
	}).Warn("Rating trajectory diverged")
}

// LogRatingUpdate logs a persisted rating update for a player.
func (rl *RatingLogger) LogRatingUpdate(player string, day float64, elo, uncertainty float64) {
	rl.WithFields(logrus.Fields{
		"player":      player,
		"day":         day,
		"elo":         elo,
		"uncertainty": uncertainty,
	}).Debug("Rating point updated")
}
