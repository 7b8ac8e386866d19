package broker

import (
	"context"
	"sync"
	"time"

	"storefront-client/internal/models"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const publishTimeout = 10 * time.Second

// TransitionPublisher forwards resource transitions to Kafka. Observe never
// blocks the operation that caused the transition: events are queued and a
// full queue drops them.
type TransitionPublisher struct {
	producer *Producer
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
	events chan models.TransitionEvent
	done   chan struct{}
}

func NewTransitionPublisher(producer *Producer, buffer int) *TransitionPublisher {
	if buffer < 1 {
		buffer = 1
	}
	return &TransitionPublisher{
		producer: producer,
		logger:   util.Named("broker"),
		events:   make(chan models.TransitionEvent, buffer),
		done:     make(chan struct{}),
	}
}

// NewTransitionEvent builds the wire event for tr.
func NewTransitionEvent(tr state.Transition) models.TransitionEvent {
	ev := models.TransitionEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeStateTransition,
			Timestamp: tr.At,
		},
		Container: tr.Container,
		Operation: tr.Operation,
		From:      string(tr.From),
		To:        string(tr.To),
	}
	if tr.Err != nil {
		ev.Error = tr.Err.Error()
	}
	return ev
}

// Observe is a state.Observer.
func (tp *TransitionPublisher) Observe(tr state.Transition) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.closed {
		return
	}

	select {
	case tp.events <- NewTransitionEvent(tr):
	default:
		util.StateEventsPublishedTotal.WithLabelValues("dropped").Inc()
	}
}

// Run publishes queued events until Close is called.
func (tp *TransitionPublisher) Run() {
	defer close(tp.done)

	for ev := range tp.events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := tp.producer.PublishEvent(ctx, ev.Container+"."+ev.Operation, ev)
		cancel()

		if err != nil {
			util.StateEventsPublishedTotal.WithLabelValues("error").Inc()
			tp.logger.Error("Failed to publish transition",
				zap.String("container", ev.Container),
				zap.String("operation", ev.Operation),
				zap.Error(err))
			continue
		}
		util.StateEventsPublishedTotal.WithLabelValues("ok").Inc()
	}
}

// Close stops accepting events and waits for Run to drain the queue.
func (tp *TransitionPublisher) Close() {
	tp.mu.Lock()
	if tp.closed {
		tp.mu.Unlock()
		return
	}
	tp.closed = true
	close(tp.events)
	tp.mu.Unlock()

	<-tp.done
}
