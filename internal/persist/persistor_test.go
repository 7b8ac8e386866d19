package persist

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"storefront-client/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notes is a minimal persisted slice.
type notes struct {
	tracker *state.Tracker
	items   []string
}

func newNotes(name string) *notes {
	return &notes{tracker: state.NewTracker(name, "save")}
}

func (n *notes) Tracker() *state.Tracker { return n.tracker }

func (n *notes) Snapshot() any {
	var out []string
	n.tracker.Read(func() { out = append(out, n.items...) })
	return out
}

func (n *notes) Restore(raw json.RawMessage) error {
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	n.tracker.Mutate(func() { n.items = items })
	return nil
}

func (n *notes) save(note string) {
	seq := n.tracker.Begin("save")
	n.tracker.Settle("save", seq, note, nil, func() { n.items = append(n.items, note) })
}

func TestRehydrateEmptyStorage(t *testing.T) {
	s := newNotes("notes")
	p := New(NewMemoryStorage(), "persist:root", s)

	assert.False(t, p.Rehydrated())
	p.Rehydrate(context.Background())
	assert.True(t, p.Rehydrated())
	assert.Empty(t, s.Snapshot())
}

func TestRehydrateCorruptBlob(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(ctx, "persist:root", []byte("{not json")))

	s := newNotes("notes")
	p := New(storage, "persist:root", s)
	p.Rehydrate(ctx)

	assert.True(t, p.Rehydrated())
	assert.Empty(t, s.Snapshot())
}

func TestRehydrateSkipsBadSlice(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(ctx, "persist:root", []byte(`{"good":["a","b"],"bad":{"x":1}}`)))

	good, bad := newNotes("good"), newNotes("bad")
	p := New(storage, "persist:root", good, bad)
	p.Rehydrate(ctx)

	assert.Equal(t, []string{"a", "b"}, good.Snapshot())
	assert.Empty(t, bad.Snapshot())
}

func TestAttachWaitsForRehydration(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(ctx, "persist:root", []byte(`{"notes":["kept"]}`)))

	s := newNotes("notes")
	p := New(storage, "persist:root", s)
	p.Attach()

	s.save("early")
	raw, err := storage.Load(ctx, "persist:root")
	require.NoError(t, err)
	assert.JSONEq(t, `{"notes":["kept"]}`, string(raw), "no write before rehydration")

	p.Rehydrate(ctx)
	s.save("late")
	raw, err = storage.Load(ctx, "persist:root")
	require.NoError(t, err)
	assert.JSONEq(t, `{"notes":["kept","late"]}`, string(raw))
}

func TestFileStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	storage, err := NewFileStorage(dir)
	require.NoError(t, err)

	_, err = storage.Load(ctx, "persist:root")
	assert.ErrorIs(t, err, ErrNotFound)

	s := newNotes("notes")
	p := New(storage, "persist:root", s)
	p.Rehydrate(ctx)
	p.Attach()
	s.save("one")
	s.save("two")

	restored := newNotes("notes")
	New(storage, "persist:root", restored).Rehydrate(ctx)
	assert.Equal(t, []string{"one", "two"}, restored.Snapshot())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files are renamed away")
	assert.Equal(t, "persist_root.json", entries[0].Name())

	require.NoError(t, p.Purge(ctx))
	_, err = os.Stat(filepath.Join(dir, "persist_root.json"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, p.Purge(ctx), "purging twice is fine")
}
