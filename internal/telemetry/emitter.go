// Package telemetry records operational diagnostics to a durable channel.
package telemetry

import (
	"context"
	"time"

	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
)

// Severity describes the diagnostic severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Emitter records diagnostic events before errors cross the API boundary.
type Emitter struct {
	store storage.DiagnosticStore
	clock func() time.Time
}

// NewEmitter creates a new diagnostic emitter.
func NewEmitter(store storage.DiagnosticStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a diagnostic event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, severity Severity, source, message string, metadata map[string]string) error {
	if e == nil || e.store == nil {
		return nil
	}
	clock := e.clock
	if clock == nil {
		clock = time.Now
	}
	return e.store.AppendDiagnosticEvent(ctx, storage.DiagnosticEvent{
		Source:    source,
		Severity:  string(severity),
		Message:   message,
		Metadata:  metadata,
		Timestamp: clock().UTC(),
	})
}
