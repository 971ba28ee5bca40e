package postgres

import (
	"context"

	"clinova/internal/domain/documents"
)

// DocumentEventPublisher adapts the outbox to the documents.EventPublisher
// port. Events land in sys_outbox inside the document's transaction and are
// drained by the worker relay.
type DocumentEventPublisher struct {
	outbox *OutboxPublisher
}

// NewDocumentEventPublisher creates the adapter.
func NewDocumentEventPublisher(outbox *OutboxPublisher) *DocumentEventPublisher {
	return &DocumentEventPublisher{outbox: outbox}
}

// Publish writes the event to the outbox.
func (p *DocumentEventPublisher) Publish(ctx context.Context, event documents.Event) error {
	return p.outbox.Publish(ctx, DomainEvent{
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       event.Payload,
	})
}

var _ documents.EventPublisher = (*DocumentEventPublisher)(nil)
