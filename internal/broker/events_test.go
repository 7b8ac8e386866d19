package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-client/internal/models"
	"storefront-client/internal/state"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func (w *fakeWriter) messages() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func TestPublishesTransitions(t *testing.T) {
	w := &fakeWriter{}
	tp := NewTransitionPublisher(newProducer(w), 16)
	go tp.Run()

	tr := state.NewTracker("cart", "add")
	tr.Observe(tp.Observe)
	seq := tr.Begin("add")
	tr.Settle("add", seq, nil, errors.New("out of stock"), nil)
	tp.Close()

	msgs := w.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "cart.add", string(msgs[0].Key))

	var ev models.TransitionEvent
	require.NoError(t, json.Unmarshal(msgs[1].Value, &ev))
	assert.Equal(t, models.EventTypeStateTransition, ev.EventType)
	assert.Equal(t, "pending", ev.From)
	assert.Equal(t, "rejected", ev.To)
	assert.Equal(t, "out of stock", ev.Error)
	assert.NotEmpty(t, ev.EventID)
}

func TestWriteFailureDoesNotStopPublisher(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	tp := NewTransitionPublisher(newProducer(w), 4)
	go tp.Run()

	tp.Observe(state.Transition{Container: "auth", Operation: "login", From: state.StatusIdle, To: state.StatusPending, At: time.Now()})
	tp.Close()

	assert.Empty(t, w.messages())
}

func TestObserveAfterCloseIsIgnored(t *testing.T) {
	tp := NewTransitionPublisher(newProducer(&fakeWriter{}), 1)
	go tp.Run()
	tp.Close()
	tp.Close()

	assert.NotPanics(t, func() {
		tp.Observe(state.Transition{Container: "auth", Operation: "login"})
	})
}
