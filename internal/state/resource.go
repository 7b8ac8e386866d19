// Package state implements the async resource lifecycle shared by every
// domain container: one resource per named operation, each moving
// idle -> pending -> fulfilled|rejected.
package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// Terminal reports whether the status is fulfilled or rejected.
func (s Status) Terminal() bool {
	return s == StatusFulfilled || s == StatusRejected
}

// ErrSuperseded is returned by Run when the response belongs to an invocation
// that was replaced by a newer one (or reset) before it settled. The state
// was left untouched.
var ErrSuperseded = errors.New("operation superseded by a newer invocation")

// Resource is a point-in-time copy of one operation's tracked state.
type Resource struct {
	Status Status
	Data   any
	Err    error
}

// Transition describes one status change.
type Transition struct {
	Container string
	Operation string
	From      Status
	To        Status
	Err       error
	At        time.Time
}

// Observer is notified after every transition, outside the tracker lock.
type Observer func(Transition)

type resource struct {
	status Status
	data   any
	err    error
	seq    uint64
}

// Tracker owns the resources of a single container. The container's own
// collections are guarded by the same lock through Settle's apply callback
// and Read.
type Tracker struct {
	mu        sync.RWMutex
	container string
	ops       map[string]*resource
	observers []Observer
}

// NewTracker creates a tracker with every operation idle.
func NewTracker(container string, operations ...string) *Tracker {
	t := &Tracker{
		container: container,
		ops:       make(map[string]*resource, len(operations)),
	}
	for _, op := range operations {
		t.ops[op] = &resource{status: StatusIdle}
	}
	return t
}

// Container returns the tracker's container name.
func (t *Tracker) Container() string {
	return t.container
}

// Operations lists the tracked operation names in sorted order.
func (t *Tracker) Operations() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.ops))
	for name := range t.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Observe registers an observer.
func (t *Tracker) Observe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

func (t *Tracker) get(op string) *resource {
	r, ok := t.ops[op]
	if !ok {
		panic(fmt.Sprintf("state: %s has no operation %q", t.container, op))
	}
	return r
}

// Begin moves op to pending, clears its error and returns the invocation's
// sequence number.
func (t *Tracker) Begin(op string) uint64 {
	t.mu.Lock()
	r := t.get(op)
	from := r.status
	r.seq++
	seq := r.seq
	r.status = StatusPending
	r.err = nil
	observers := t.observers
	t.mu.Unlock()

	t.notify(observers, Transition{Container: t.container, Operation: op, From: from, To: StatusPending, At: time.Now()})
	return seq
}

// Settle records the outcome of invocation seq. When seq is no longer the
// latest invocation of op nothing changes and false is returned. On success
// data is stored; on failure err is stored and data is kept. apply, when set,
// runs under the lock in both cases.
func (t *Tracker) Settle(op string, seq uint64, data any, err error, apply func()) bool {
	t.mu.Lock()
	r := t.get(op)
	if r.seq != seq || r.status != StatusPending {
		t.mu.Unlock()
		return false
	}

	from := r.status
	if err != nil {
		r.status = StatusRejected
		r.err = err
	} else {
		r.status = StatusFulfilled
		r.data = data
	}
	if apply != nil {
		apply()
	}
	to := r.status
	observers := t.observers
	t.mu.Unlock()

	t.notify(observers, Transition{Container: t.container, Operation: op, From: from, To: to, Err: err, At: time.Now()})
	return true
}

// Reset returns op to idle and clears its error; data is kept. Any invocation
// still in flight is invalidated.
func (t *Tracker) Reset(op string) {
	t.mu.Lock()
	r := t.get(op)
	from := r.status
	r.seq++
	r.status = StatusIdle
	r.err = nil
	observers := t.observers
	t.mu.Unlock()

	if from != StatusIdle {
		t.notify(observers, Transition{Container: t.container, Operation: op, From: from, To: StatusIdle, At: time.Now()})
	}
}

// Mutate runs fn under the write lock without touching any status. Used for
// local-only actions such as clearing search results.
func (t *Tracker) Mutate(fn func()) {
	t.mu.Lock()
	fn()
	t.mu.Unlock()
}

// Read runs fn under the read lock.
func (t *Tracker) Read(fn func()) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn()
}

func (t *Tracker) Status(op string) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.get(op).status
}

func (t *Tracker) Err(op string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.get(op).err
}

func (t *Tracker) Data(op string) any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.get(op).data
}

// Resource returns a copy of op's status, data and error.
func (t *Tracker) Resource(op string) Resource {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r := t.get(op)
	return Resource{Status: r.status, Data: r.data, Err: r.err}
}

// Statuses returns the status of every operation.
func (t *Tracker) Statuses() map[string]Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Status, len(t.ops))
	for name, r := range t.ops {
		out[name] = r.status
	}
	return out
}

func (t *Tracker) notify(observers []Observer, tr Transition) {
	for _, o := range observers {
		o(tr)
	}
}
