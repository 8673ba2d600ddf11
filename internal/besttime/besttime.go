// Package besttime keeps the fastest completed round time in a single
// key-value slot.
package besttime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/playperu/campusquiz/internal/kv"
)

// Key is the fixed storage key for the best time.
const Key = "campusquiz:best_time"

// Record reads and writes the best time. Storage problems never reach the
// player: a missing or corrupt value reads as "no best yet", an unreadable
// store reads as "no best" for display but blocks Offer from writing, and a
// failed write is logged and reported as "not a new best".
type Record struct {
	store  kv.Store
	logger *slog.Logger

	// mu makes Offer's read-compare-write atomic across quiz sessions.
	mu sync.Mutex
}

func New(store kv.Store, logger *slog.Logger) *Record {
	if logger == nil {
		logger = slog.Default()
	}
	return &Record{store: store, logger: logger}
}

// Get returns the stored best time in seconds and whether one exists.
func (r *Record) Get(ctx context.Context) (int, bool) {
	n, ok, err := r.load(ctx)
	if err != nil {
		r.logger.Warn("reading best time", "error", err)
		return 0, false
	}
	return n, ok
}

// load separates "no best" (missing or malformed) from a store failure.
func (r *Record) load(ctx context.Context) (int, bool, error) {
	raw, err := r.store.Get(ctx, Key)
	if errors.Is(err, kv.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		r.logger.Warn("ignoring malformed best time", "value", raw)
		return 0, false, nil
	}
	return n, true, nil
}

// Set overwrites the best time unconditionally.
func (r *Record) Set(ctx context.Context, seconds int) error {
	if err := r.store.Set(ctx, Key, strconv.Itoa(seconds)); err != nil {
		return fmt.Errorf("writing best time: %w", err)
	}
	return nil
}

// Offer stores seconds if no best exists yet or it is strictly faster than
// the current best. It reports whether seconds was stored as the new best;
// equal times leave the stored value untouched. When the current best cannot
// be read nothing is written.
//
// The store is used without ctx's cancellation, so a client hanging up
// right after its last guess still gets the record saved.
func (r *Record) Offer(ctx context.Context, seconds int) bool {
	if seconds < 0 {
		return false
	}

	ctx = context.WithoutCancel(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	best, ok, err := r.load(ctx)
	if err != nil {
		r.logger.Warn("skipping best time update, current best unreadable", "seconds", seconds, "error", err)
		return false
	}
	if ok && seconds >= best {
		return false
	}
	if err := r.Set(ctx, seconds); err != nil {
		r.logger.Warn("best time not saved", "seconds", seconds, "error", err)
		return false
	}
	return true
}

// Ping checks the underlying store.
func (r *Record) Ping(ctx context.Context) error { return r.store.Ping(ctx) }
