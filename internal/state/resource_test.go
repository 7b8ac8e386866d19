package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string
	Name string
}

func (r record) Key() string { return r.ID }

func TestRunFulfilled(t *testing.T) {
	tr := NewTracker("things", "fetch")
	var items []record

	var seenPending Status
	res, err := Run(context.Background(), tr, "fetch", func(ctx context.Context) ([]record, error) {
		seenPending = tr.Status("fetch")
		return []record{{ID: "1"}}, nil
	}, func(r []record) { items = r })

	require.NoError(t, err)
	assert.Equal(t, StatusPending, seenPending)
	assert.Equal(t, StatusFulfilled, tr.Status("fetch"))
	assert.Nil(t, tr.Err("fetch"))
	assert.Equal(t, res, tr.Data("fetch"))
	assert.Len(t, items, 1)
}

func TestRunRejectedKeepsData(t *testing.T) {
	tr := NewTracker("things", "fetch")
	_, err := Run(context.Background(), tr, "fetch", func(ctx context.Context) (string, error) {
		return "first", nil
	}, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	applied := false
	_, err = Run(context.Background(), tr, "fetch", func(ctx context.Context) (string, error) {
		return "", boom
	}, func(string) { applied = true })

	assert.ErrorIs(t, err, boom)
	assert.False(t, applied)
	res := tr.Resource("fetch")
	assert.Equal(t, StatusRejected, res.Status)
	assert.Same(t, boom, res.Err)
	assert.Equal(t, "first", res.Data)
}

func TestBeginClearsError(t *testing.T) {
	tr := NewTracker("things", "save")
	seq := tr.Begin("save")
	require.True(t, tr.Settle("save", seq, nil, errors.New("nope"), nil))
	require.Error(t, tr.Err("save"))

	tr.Begin("save")
	assert.Equal(t, StatusPending, tr.Status("save"))
	assert.NoError(t, tr.Err("save"))
}

func TestResetIsIdempotent(t *testing.T) {
	tr := NewTracker("things", "save")
	seq := tr.Begin("save")
	require.True(t, tr.Settle("save", seq, "payload", errors.New("nope"), nil))
	seq = tr.Begin("save")
	require.True(t, tr.Settle("save", seq, "payload", nil, nil))

	tr.Reset("save")
	first := tr.Resource("save")
	tr.Reset("save")
	second := tr.Resource("save")

	assert.Equal(t, first, second)
	assert.Equal(t, StatusIdle, second.Status)
	assert.Nil(t, second.Err)
	assert.Equal(t, "payload", second.Data)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	tr := NewTracker("search", "query")

	older := tr.Begin("query")
	newer := tr.Begin("query")

	assert.False(t, tr.Settle("query", older, "old", nil, nil))
	assert.Equal(t, StatusPending, tr.Status("query"))

	assert.True(t, tr.Settle("query", newer, "new", nil, nil))
	assert.Equal(t, "new", tr.Data("query"))
}

func TestResetInvalidatesInFlight(t *testing.T) {
	tr := NewTracker("things", "fetch")
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := Run(context.Background(), tr, "fetch", func(ctx context.Context) (int, error) {
			<-release
			return 1, nil
		}, nil)
		done <- err
	}()

	require.Eventually(t, func() bool { return tr.Status("fetch") == StatusPending }, timeout, tick)
	tr.Reset("fetch")
	close(release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, StatusIdle, tr.Status("fetch"))
	assert.Nil(t, tr.Data("fetch"))
}

func TestOperationsDoNotShareStatus(t *testing.T) {
	tr := NewTracker("auth", "login", "signup")
	tr.Begin("login")

	assert.Equal(t, StatusPending, tr.Status("login"))
	assert.Equal(t, StatusIdle, tr.Status("signup"))
}

func TestObserversSeeEveryTransition(t *testing.T) {
	tr := NewTracker("things", "fetch")
	var mu sync.Mutex
	var seen []Status
	tr.Observe(func(ev Transition) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, ev.To)
	})

	_, _ = Run(context.Background(), tr, "fetch", func(ctx context.Context) (int, error) { return 1, nil }, nil)
	tr.Reset("fetch")
	tr.Reset("fetch")

	assert.Equal(t, []Status{StatusPending, StatusFulfilled, StatusIdle}, seen)
}

func TestUnknownOperationPanics(t *testing.T) {
	tr := NewTracker("things", "fetch")
	assert.Panics(t, func() { tr.Begin("nope") })
}

func TestMergeHelpers(t *testing.T) {
	items := []record{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}

	items = Upsert(items, record{ID: "3", Name: "c"})
	assert.Len(t, items, 3)

	items = Upsert(items, record{ID: "2", Name: "B"})
	assert.Equal(t, []record{{ID: "1", Name: "a"}, {ID: "2", Name: "B"}, {ID: "3", Name: "c"}}, items)

	items = Remove(items, "1")
	_, ok := Find(items, "1")
	assert.False(t, ok)
	assert.Len(t, items, 2)
}

func TestRunSettledRejectHook(t *testing.T) {
	tr := NewTracker("session", "logout")
	cleared := false
	boom := errors.New("server down")

	_, err := RunSettled(context.Background(), tr, "logout", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, boom
	}, nil, func(err error) {
		cleared = errors.Is(err, boom)
	})

	assert.Same(t, boom, err)
	assert.True(t, cleared)
	assert.Equal(t, StatusRejected, tr.Status("logout"))
}
