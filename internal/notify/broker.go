package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const eventBufferSize = 16

// Event types emitted by the override reconciler.
const (
	EventQuestionOverride   = "grading.override.question"
	EventSubmissionOverride = "grading.override.submission"
)

// Event is a grading lifecycle notification delivered to presentation
// layers. It replaces ambient toast state with an explicit message channel.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	SubmissionID int64     `json:"submission_id"`
	ResponseIDs  []int64   `json:"response_ids,omitempty"`
	TeacherID    string    `json:"teacher_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher is the narrow surface core services depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Noop discards events; used where no delivery channel is configured.
type Noop struct{}

// Publish implements Publisher by doing nothing.
func (Noop) Publish(context.Context, Event) {}

// Broker fans grading events out to in-process subscribers and, when a
// NATS connection is configured, to other gateway instances.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	nats        *nats.Conn
	subject     string
	logger      zerolog.Logger
}

// NewBroker constructs a broker. conn may be nil for single-instance or
// test deployments.
func NewBroker(conn *nats.Conn, subject string, logger zerolog.Logger) *Broker {
	return &Broker{
		subscribers: make(map[chan Event]struct{}),
		nats:        conn,
		subject:     subject,
		logger:      logger.With().Str("component", "grading_broker").Logger(),
	}
}

// Publish delivers the event to all local subscribers and the NATS subject.
// Slow subscribers are skipped rather than blocking the publisher.
func (b *Broker) Publish(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if b.nats != nil && b.subject != "" {
		payload, err := json.Marshal(event)
		if err != nil {
			b.logger.Warn().Err(err).Msg("failed to encode grading event")
		} else if err := b.nats.Publish(b.subject, payload); err != nil {
			b.logger.Warn().Err(err).Str("subject", b.subject).Msg("failed to publish grading event")
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for subscriber := range b.subscribers {
		select {
		case subscriber <- event:
		default:
			b.logger.Debug().Str("event_id", event.ID).Msg("dropping grading event for slow subscriber")
		}
	}
}

// Subscribe registers a listener. The returned cancel function must be
// called when the listener goes away.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	channel := make(chan Event, eventBufferSize)

	b.mu.Lock()
	b.subscribers[channel] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[channel]; ok {
			delete(b.subscribers, channel)
			close(channel)
		}
		b.mu.Unlock()
	}

	return channel, cancel
}
