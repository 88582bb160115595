package infrastructure

import (
	"context"

	"sidebet/domain/events"
	"sidebet/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// NATSTransactionalPublisher buffers events for the lifetime of one unit of
// work. Commit flushes the buffer to the real publisher; rollback discards it,
// so subscribers never see events for writes that did not happen.
type NATSTransactionalPublisher struct {
	sink    interfaces.EventPublisher
	pending []events.Event
}

func NewNATSTransactionalPublisher(sink interfaces.EventPublisher) interfaces.TransactionalEventPublisher {
	return &NATSTransactionalPublisher{sink: sink}
}

// Publish queues the event; nothing reaches the broker until Flush
func (p *NATSTransactionalPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush sends every queued event in order. Delivery failures are logged and
// skipped: the transaction already committed, so the remaining events must
// still go out.
func (p *NATSTransactionalPublisher) Flush(ctx context.Context) error {
	for _, event := range p.pending {
		if err := p.sink.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}
	p.pending = p.pending[:0]
	return nil
}

// Discard drops the queue without publishing
func (p *NATSTransactionalPublisher) Discard() {
	if n := len(p.pending); n > 0 {
		log.WithField("discarded", n).Debug("Discarding pending events")
	}
	p.pending = p.pending[:0]
}
