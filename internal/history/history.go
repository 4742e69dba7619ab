// Package history implements the shared clipboard-history store: a polled
// capture loop over the system clipboard feeding a bounded, deduplicated,
// newest-first item list that is persisted through a storage capability
// and announced through a change notifier.
//
// Each process holds its own in-memory copy; the persisted list is
// read-modify-write without isolation, so concurrent writers from two
// processes race (last write wins). That is accepted, not designed around.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"go.klb.dev/clipvault/internal/clip"
	"go.klb.dev/clipvault/internal/item"
	"go.klb.dev/clipvault/internal/notify"
)

const (
	// DefaultMaxItems caps the history length; the oldest entries are
	// evicted beyond it.
	DefaultMaxItems = 50

	// DefaultPollInterval is how often the system clipboard is sampled.
	DefaultPollInterval = time.Second

	// DefaultResumeDelay is how long polling stays suspended after
	// DeleteAll, so the cleared clipboard is not immediately re-captured.
	DefaultResumeDelay = 2 * time.Second
)

// ErrNotFound is returned when an item identity is not in the history.
var ErrNotFound = errors.New("history: item not found")

// Persister is the capability the store needs from its persistence layer.
// storage.Store satisfies it.
type Persister interface {
	Load(ctx context.Context) ([]item.Item, error)
	Save(ctx context.Context, items []item.Item) error
}

// Options tune a Store. Zero values select the defaults above.
type Options struct {
	MaxItems     int
	PollInterval time.Duration
	ResumeDelay  time.Duration
	// Source names this process in published change events; receivers use
	// it to ignore their own announcements.
	Source string
}

// Store owns one process's view of the clipboard history.
type Store struct {
	backend clip.Backend
	db      Persister
	bus     notify.Publisher
	opts    Options

	mu       sync.Mutex
	items    []item.Item
	lastSeen string // content fingerprint from the previous poll tick
	paused   bool

	saveMu sync.Mutex // orders Save calls against each other
}

// New builds a Store around backend, db, and bus. bus may be nil when no
// one listens. Call Reload to hydrate it and Run to start capturing.
func New(backend clip.Backend, db Persister, bus notify.Publisher, opts Options) *Store {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.ResumeDelay <= 0 {
		opts.ResumeDelay = DefaultResumeDelay
	}
	return &Store{backend: backend, db: db, bus: bus, opts: opts}
}

// Run samples the clipboard on the poll interval until ctx is cancelled.
// Genuinely new content — different from what the previous tick saw — is
// inserted into the history; everything else is ignored.
func (s *Store) Run(ctx context.Context) error {
	t := time.NewTicker(s.opts.PollInterval)
	defer t.Stop()

	slog.Info("clipboard capture started",
		"backend", s.backend.Name(),
		"interval", s.opts.PollInterval,
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.pollOnce(ctx)
		}
	}
}

func (s *Store) pollOnce(ctx context.Context) {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()
	if paused {
		return
	}

	content, ok, err := s.backend.Read()
	if err != nil {
		// No content and transient read failures are both no-ops.
		slog.Debug("clipboard read failed", "err", err)
		return
	}
	if !ok {
		return
	}
	if content.Kind == item.KindText {
		content.Text = strings.TrimSpace(content.Text)
		if content.Text == "" {
			return
		}
	}

	fp := content.Fingerprint()
	s.mu.Lock()
	unchanged := fp == s.lastSeen
	s.lastSeen = fp
	s.mu.Unlock()
	if unchanged {
		return
	}

	it := s.Insert(ctx, content)
	slog.Debug("clipboard change captured",
		"id", it.ID,
		"kind", it.Content.Kind,
		"preview", it.Content.Preview(64),
	)
}

// Insert adds content as the newest entry. Any existing entry with equal
// content is evicted first, so re-copied content is promoted to the front
// rather than duplicated. The list is truncated to MaxItems, persisted,
// and a change event is published.
func (s *Store) Insert(ctx context.Context, c item.Content) item.Item {
	it := item.New(c)

	s.mu.Lock()
	kept := make([]item.Item, 0, len(s.items)+1)
	kept = append(kept, it)
	for _, old := range s.items {
		if old.Content.Equal(c) {
			continue
		}
		kept = append(kept, old)
	}
	if len(kept) > s.opts.MaxItems {
		kept = kept[:s.opts.MaxItems]
	}
	s.items = kept
	count := len(kept)
	s.mu.Unlock()

	s.persist(ctx)
	s.publish(count)
	return it
}

// CopyToClipboard writes the identified item's content back to the system
// clipboard. History is not mutated here; the next poll tick observes the
// write and promotes the entry through the normal insert path.
func (s *Store) CopyToClipboard(id string) error {
	it, ok := s.Get(id)
	if !ok {
		return ErrNotFound
	}
	if err := s.backend.Write(it.Content); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}

// Delete removes the identified item, persists, and publishes.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i, it := range s.items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	count := len(s.items)
	s.mu.Unlock()

	s.persist(ctx)
	s.publish(count)
	return nil
}

// DeleteAll clears the history, persists the empty list, publishes, and
// suspends polling for ResumeDelay so whatever still sits on the system
// clipboard is not instantly re-captured as a fresh entry.
func (s *Store) DeleteAll(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.paused = true
	s.mu.Unlock()

	time.AfterFunc(s.opts.ResumeDelay, func() {
		s.mu.Lock()
		s.paused = false
		s.mu.Unlock()
		slog.Debug("clipboard polling resumed")
	})

	s.persist(ctx)
	s.publish(0)
}

// Reload replaces the in-memory list with the persisted one, sorted newest
// first and truncated to MaxItems. Called at startup and whenever another
// process announces a change.
func (s *Store) Reload(ctx context.Context) error {
	items, err := s.db.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > s.opts.MaxItems {
		items = items[:s.opts.MaxItems]
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// WatchChanges reloads the store for every Change on ch that another
// process produced. Blocks until ctx is cancelled or ch closes.
func (s *Store) WatchChanges(ctx context.Context, ch <-chan notify.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-ch:
			if !ok {
				return
			}
			if c.Source != "" && c.Source == s.opts.Source {
				continue
			}
			if err := s.Reload(ctx); err != nil {
				slog.Warn("reload after change failed", "err", err)
			}
		}
	}
}

// Items returns a snapshot copy of the history, newest first.
func (s *Store) Items() []item.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns the identified item.
func (s *Store) Get(id string) (item.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return item.Item{}, false
}

// Len returns the current history length.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// MaxItems returns the configured history cap.
func (s *Store) MaxItems() int { return s.opts.MaxItems }

func (s *Store) snapshotLocked() []item.Item {
	out := make([]item.Item, len(s.items))
	copy(out, s.items)
	return out
}

// persist writes the current list through the storage capability. saveMu
// serialises writers and the list is read inside it, so an earlier
// mutation's save can never land after — and overwrite — a later one.
// A failed save is logged; the in-memory state stays authoritative for
// this process.
func (s *Store) persist(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.db.Save(ctx, s.Items()); err != nil {
		slog.Error("history save failed", "err", err)
	}
}

func (s *Store) publish(count int) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(notify.Change{Count: count, Source: s.opts.Source})
}
