package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about feed ingestion
type IngestionMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	TotalRecords     int
	AcceptedGames    int
	PlayersCreated   int
	Duplicates       int
	ValidationErrors int
	Errors           int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalRecords = 0
	m.AcceptedGames = 0
	m.PlayersCreated = 0
	m.Duplicates = 0
	m.ValidationErrors = 0
	m.Errors = 0
}

// RecordGame increments the accepted game count
func (m *IngestionMetrics) RecordGame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AcceptedGames++
}

// RecordPlayer increments the created player count
func (m *IngestionMetrics) RecordPlayer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayersCreated++
}

// RecordDuplicate increments the duplicate count
func (m *IngestionMetrics) RecordDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duplicates++
}

// RecordError increments the error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// RecordValidationError increments the validation error count
func (m *IngestionMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acceptRate := float64(0)
	if m.TotalRecords > 0 {
		acceptRate = float64(m.AcceptedGames) / float64(m.TotalRecords) * 100
	}

	return fmt.Sprintf(
		"IngestionMetrics{Total=%d, Accepted=%d (%.1f%%), Players=%d, Duplicates=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		m.TotalRecords,
		m.AcceptedGames,
		acceptRate,
		m.PlayersCreated,
		m.Duplicates,
		m.ValidationErrors,
		m.Errors,
		m.Duration,
	)
}
