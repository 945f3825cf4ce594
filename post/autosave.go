package post

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultAutosaveInterval is how often a changed collection is written out.
const DefaultAutosaveInterval = 4 * time.Second

// Logger is the subset of echo.Logger the autosaver writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Autosaver writes full snapshots of a Store on a fixed interval. Mutations
// made after the last successful save are lost if the process dies.
type Autosaver struct {
	store    *Store
	target   Snapshotter
	interval time.Duration
	logger   Logger

	mu       sync.Mutex
	savedRev uint64
	lastErr  error

	done chan struct{}
	wg   sync.WaitGroup
}

// NewAutosaver returns an autosaver for store. The store is treated as clean
// at its current revision, since it was just loaded from target.
func NewAutosaver(store *Store, target Snapshotter, interval time.Duration, logger Logger) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{
		store:    store,
		target:   target,
		interval: interval,
		logger:   logger,
		savedRev: store.Revision(),
	}
}

// Start runs the save loop in its own goroutine.
func (a *Autosaver) Start() {
	a.done = make(chan struct{})
	ticker := time.NewTicker(a.interval)
	a.wg.Add(1)

	go func() {
		defer a.wg.Done()
		for {
			select {
			case <-ticker.C:
				if err := a.SaveNow(context.Background()); err != nil && a.logger != nil {
					a.logger.Errorf("autosave: %v", err)
				}
			case <-a.done:
				ticker.Stop()
				return
			}
		}
	}()
}

// SaveNow writes a snapshot if the store changed since the last successful
// save. A failed save leaves the store dirty so the next call retries.
func (a *Autosaver) SaveNow(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap, rev := a.store.snapshotAt()
	if rev == a.savedRev {
		return nil
	}
	if err := a.target.Save(ctx, snap); err != nil {
		a.lastErr = fmt.Errorf("save snapshot: %w", err)
		return a.lastErr
	}
	a.savedRev = rev
	a.lastErr = nil
	if a.logger != nil {
		a.logger.Infof("autosave: wrote %d posts", len(snap.Posts))
	}
	return nil
}

// Dirty reports whether the store has changes not yet written.
func (a *Autosaver) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Revision() != a.savedRev
}

// Err returns the error of the most recent failed save, or nil once a save
// succeeds again.
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Stop ends the save loop and writes any pending changes once more.
func (a *Autosaver) Stop(ctx context.Context) error {
	if a.done != nil {
		close(a.done)
		a.wg.Wait()
		a.done = nil
	}
	return a.SaveNow(ctx)
}
