// Package documents provides shared plumbing for document services.
package documents

import (
	"context"

	"clinova/internal/core/id"
)

// Event is a domain event raised by a document operation. Events are written
// to the transactional outbox and drained by the background worker.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// EventPublisher publishes events inside the current transaction.
// The PostgreSQL outbox implements it in the infrastructure layer.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Event types raised by document services.
const (
	EventLedgerGenerate = "ledger.generate"
	EventDebtChanged    = "debt.changed"
)

// LedgerGeneratePayload asks the worker to (re)generate the journal entry for
// a source document. Generation is idempotent, so a duplicate task is a no-op.
type LedgerGeneratePayload struct {
	SourceType string `json:"sourceType"`
	SourceID   id.ID  `json:"sourceId"`
	Regenerate bool   `json:"regenerate,omitempty"`
}
