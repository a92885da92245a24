package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonathan/cv-studio/internal/store"
)

// Defaults for the save listener.
const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultMaxBytes = 5 << 20
	saveTimeout     = 10 * time.Second
)

// ErrPayloadTooLarge is returned by Flush when the encoded state exceeds the
// configured ceiling. The value is not written.
var ErrPayloadTooLarge = errors.New("persist: payload exceeds size ceiling")

// Persister saves store changes to a Storage. Bursts of changes within the
// debounce window produce a single write of the latest state. Failures are
// logged and never reach the committer.
type Persister struct {
	storage  Storage
	key      string
	debounce time.Duration
	maxBytes int
	logger   *slog.Logger

	mu      sync.Mutex
	pending *store.State
	timer   *time.Timer
	closed  bool

	// writeMu serializes writes; pending is taken under it so the last
	// scheduled state is always the last one written.
	writeMu sync.Mutex
	writes  int
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithKey sets the storage key.
func WithKey(key string) PersisterOption {
	return func(p *Persister) {
		if key != "" {
			p.key = key
		}
	}
}

// WithDebounce sets the quiet period before a write. Zero writes on the next
// tick.
func WithDebounce(d time.Duration) PersisterOption {
	return func(p *Persister) {
		if d >= 0 {
			p.debounce = d
		}
	}
}

// WithMaxBytes sets the payload ceiling. Zero disables it.
func WithMaxBytes(n int) PersisterOption {
	return func(p *Persister) {
		if n >= 0 {
			p.maxBytes = n
		}
	}
}

// WithPersistLogger sets the logger.
func WithPersistLogger(logger *slog.Logger) PersisterOption {
	return func(p *Persister) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPersister creates a save listener over storage.
func NewPersister(storage Storage, opts ...PersisterOption) *Persister {
	p := &Persister{
		storage:  storage,
		key:      DefaultKey,
		debounce: DefaultDebounce,
		maxBytes: DefaultMaxBytes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Attach subscribes the persister to s and returns the unsubscribe function.
func (p *Persister) Attach(s *store.Store) func() {
	return s.Subscribe(p.Notify)
}

// Notify schedules a write of change.State. It never blocks on storage.
func (p *Persister) Notify(change store.Change) {
	st := change.State
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = &st
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, p.fire)
}

func (p *Persister) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	// Failures were already logged by save.
	_ = p.Flush(ctx)
}

// Flush writes the pending state now, if any.
func (p *Persister) Flush(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	st := p.pending
	p.pending = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()

	if st == nil {
		return nil
	}
	return p.save(ctx, *st)
}

// Save writes state immediately, bypassing the debounce.
func (p *Persister) Save(ctx context.Context, state store.State) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.save(ctx, state)
}

// Close flushes the pending state and stops accepting changes.
func (p *Persister) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return p.Flush(ctx)
}

// Writes returns the number of successful writes.
func (p *Persister) Writes() int {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.writes
}

func (p *Persister) save(ctx context.Context, state store.State) error {
	data, err := Encode(state)
	if err != nil {
		p.logger.Error("failed to encode state", "component", "persist", "error", err)
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if p.maxBytes > 0 && len(data) > p.maxBytes {
		p.logger.Warn("state too large, not saved",
			"component", "persist", "key", p.key, "bytes", len(data), "max_bytes", p.maxBytes)
		return ErrPayloadTooLarge
	}

	if err := p.storage.Set(ctx, p.key, data); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			p.logger.Warn("storage quota exceeded, clearing saved state", "component", "persist", "key", p.key, "error", err)
			if rmErr := p.storage.Remove(ctx, p.key); rmErr != nil {
				p.logger.Warn("failed to clear saved state", "component", "persist", "key", p.key, "error", rmErr)
			}
			return err
		}
		p.logger.Error("failed to save state", "component", "persist", "key", p.key, "error", err)
		return err
	}

	p.writes++
	p.logger.Debug("state saved", "component", "persist", "key", p.key, "bytes", len(data))
	return nil
}
