package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"go.uber.org/zap"
)

const flushTimeout = 5 * time.Second

// Slice is one container whose data survives a restart. The blob entry is
// named after the container.
type Slice interface {
	Tracker() *state.Tracker
	Snapshot() any
	Restore(raw json.RawMessage) error
}

// Persistor writes the slices as one JSON object under key and reads them
// back on start.
type Persistor struct {
	storage Storage
	key     string
	slices  []Slice
	logger  *zap.Logger

	rehydrated atomic.Bool
	flushMu    sync.Mutex
}

func New(storage Storage, key string, slices ...Slice) *Persistor {
	return &Persistor{
		storage: storage,
		key:     key,
		slices:  slices,
		logger:  util.Named("persist"),
	}
}

// Rehydrated reports whether Rehydrate has finished.
func (p *Persistor) Rehydrated() bool {
	return p.rehydrated.Load()
}

// Rehydrate restores every slice found in the stored blob. A missing,
// unreadable or corrupt blob leaves the slices empty and is not an error.
func (p *Persistor) Rehydrate(ctx context.Context) {
	defer p.rehydrated.Store(true)

	raw, err := p.storage.Load(ctx, p.key)
	if errors.Is(err, ErrNotFound) {
		util.RehydrationsTotal.WithLabelValues("empty").Inc()
		p.logger.Info("No persisted state, starting empty", zap.String("key", p.key))
		return
	}
	if err != nil {
		util.RehydrationsTotal.WithLabelValues("error").Inc()
		p.logger.Error("Failed to load persisted state", zap.String("key", p.key), zap.Error(err))
		return
	}

	var blob map[string]json.RawMessage
	if err := json.Unmarshal(raw, &blob); err != nil {
		util.RehydrationsTotal.WithLabelValues("corrupt").Inc()
		p.logger.Warn("Ignoring corrupt persisted state", zap.String("key", p.key), zap.Error(err))
		return
	}

	restored := 0
	for _, s := range p.slices {
		name := s.Tracker().Container()
		entry, ok := blob[name]
		if !ok {
			continue
		}
		if err := s.Restore(entry); err != nil {
			p.logger.Warn("Ignoring persisted slice", zap.String("slice", name), zap.Error(err))
			continue
		}
		restored++
	}

	util.RehydrationsTotal.WithLabelValues("restored").Inc()
	p.logger.Info("Rehydrated persisted state", zap.String("key", p.key), zap.Int("slices", restored))
}

// Encode builds the blob from the current state of every slice.
func (p *Persistor) Encode() ([]byte, error) {
	blob := make(map[string]any, len(p.slices))
	for _, s := range p.slices {
		blob[s.Tracker().Container()] = s.Snapshot()
	}
	b, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

// Flush writes the current state.
func (p *Persistor) Flush(ctx context.Context) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	b, err := p.Encode()
	if err != nil {
		util.PersistWritesTotal.WithLabelValues("error").Inc()
		return err
	}
	if err := p.storage.Save(ctx, p.key, b); err != nil {
		util.PersistWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("save state: %w", err)
	}
	util.PersistWritesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Attach flushes after every settled transition of a persisted slice. Writes
// before rehydration are skipped so the stored blob is not overwritten by
// empty start-up state.
func (p *Persistor) Attach() {
	for _, s := range p.slices {
		s.Tracker().Observe(func(tr state.Transition) {
			if !tr.To.Terminal() {
				return
			}
			p.FlushNow()
		})
	}
}

// FlushNow is Flush with its own timeout and logged errors, for callbacks
// that have no context. It does nothing before rehydration.
func (p *Persistor) FlushNow() {
	if !p.Rehydrated() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.Flush(ctx); err != nil {
		p.logger.Error("Failed to persist state", zap.Error(err))
	}
}

// Purge removes the stored blob.
func (p *Persistor) Purge(ctx context.Context) error {
	if err := p.storage.Remove(ctx, p.key); err != nil {
		return fmt.Errorf("purge state: %w", err)
	}
	return nil
}
