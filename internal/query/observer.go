package query

import (
	"log/slog"
	"time"
)

// EventType represents different lifecycle phases in query evaluation
type EventType string

const (
	EventQueryStart  EventType = "query_start"
	EventSelectEnd   EventType = "select_end"
	EventGroupEnd    EventType = "group_end"
	EventEvalEnd     EventType = "eval_end"
	EventMutateEnd   EventType = "mutate_end"
	EventQueryEnd    EventType = "query_end"
	EventQueryFailed EventType = "query_failed"
)

// Event represents a lifecycle event in query evaluation
type Event struct {
	Type      EventType
	RunID     string      // Query run ID for tracing
	Store     string      // Backing store ID
	Timestamp time.Time   // When the event occurred
	Data      any         // Phase-specific data (e.g. selection size, group count)
}

// Observer interface for event subscribers
// Observers receive events at major evaluation phases
type Observer interface {
	OnEvent(event Event)
}

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{
		logger: slog.Default(),
	}
}

// OnEvent implements the Observer interface
// It logs each event with structured fields for easy filtering and analysis
func (lo *LoggingObserver) OnEvent(event Event) {
	lo.logger.Info("query_lifecycle",
		"event", event.Type,
		"run_id", event.RunID,
		"store", event.Store,
		"timestamp", event.Timestamp,
		"data", event.Data,
	)
}
