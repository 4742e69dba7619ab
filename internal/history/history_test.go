package history_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipvault/internal/clip"
	"go.klb.dev/clipvault/internal/history"
	"go.klb.dev/clipvault/internal/item"
	"go.klb.dev/clipvault/internal/notify"
	"go.klb.dev/clipvault/internal/storage"
)

func openStorage(t *testing.T) *storage.Store {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), storage.DBFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newStore(t *testing.T, opts history.Options) (*history.Store, *clip.Memory) {
	t.Helper()
	mem := clip.NewMemory()
	return history.New(mem, openStorage(t), notify.NewBus(), opts), mem
}

func TestInsertPromotesEqualContent(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t, history.Options{})
	ctx := context.Background()

	s.Insert(ctx, item.TextContent("a"))
	s.Insert(ctx, item.TextContent("b"))
	s.Insert(ctx, item.TextContent("a"))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Content.Text)
	assert.Equal(t, "b", items[1].Content.Text)
}

func TestInsertEnforcesCap(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t, history.Options{})
	ctx := context.Background()

	for i := 0; i < 51; i++ {
		s.Insert(ctx, item.TextContent(fmt.Sprintf("item-%d", i)))
	}

	items := s.Items()
	require.Len(t, items, 50)
	// The very first insert is the one evicted.
	assert.Equal(t, "item-50", items[0].Content.Text)
	assert.Equal(t, "item-1", items[49].Content.Text)
}

func TestHistoryNeverHoldsEqualContentTwice(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t, history.Options{MaxItems: 10})
	ctx := context.Background()

	for i := 0; i < 40; i++ {
		s.Insert(ctx, item.TextContent(fmt.Sprintf("item-%d", i%7)))
	}

	items := s.Items()
	assert.LessOrEqual(t, len(items), 10)
	seen := make(map[string]bool)
	for _, it := range items {
		require.False(t, seen[it.Content.Text], "duplicate content %q", it.Content.Text)
		seen[it.Content.Text] = true
	}
}

func TestConcurrentInsertsPersistTheFinalList(t *testing.T) {
	t.Parallel()

	db := openStorage(t)
	s := history.New(clip.NewMemory(), db, notify.NewBus(), history.Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Insert(ctx, item.TextContent(fmt.Sprintf("concurrent-%d", i)))
		}(i)
	}
	wg.Wait()

	// Every insert's save has returned, so the database mirrors the
	// in-memory list exactly: no interleaving may leave a stale list behind.
	persisted, err := db.Load(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, s.Len())

	want := make(map[string]bool, s.Len())
	for _, it := range s.Items() {
		want[it.ID] = true
	}
	for _, it := range persisted {
		assert.True(t, want[it.ID], "stale persisted item %s", it.ID)
	}
}

func TestCrossKindContentCoexists(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t, history.Options{})
	ctx := context.Background()

	// Identical bytes under different kinds are distinct entries.
	s.Insert(ctx, item.TextContent("payload"))
	s.Insert(ctx, item.ImageContent([]byte("payload")))

	assert.Equal(t, 2, s.Len())
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t, history.Options{})
	ctx := context.Background()

	it := s.Insert(ctx, item.TextContent("doomed"))
	s.Insert(ctx, item.TextContent("survivor"))

	require.NoError(t, s.Delete(ctx, it.ID))
	require.Equal(t, 1, s.Len())
	assert.ErrorIs(t, s.Delete(ctx, it.ID), history.ErrNotFound)
}

func TestDeleteAllThenReloadIsEmpty(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t, history.Options{ResumeDelay: 10 * time.Millisecond})
	ctx := context.Background()

	s.Insert(ctx, item.TextContent("one"))
	s.Insert(ctx, item.TextContent("two"))
	require.Equal(t, 2, s.Len())

	s.DeleteAll(ctx)
	require.NoError(t, s.Reload(ctx))
	assert.Equal(t, 0, s.Len())
}

func TestReloadSortsNewestFirstAndTruncates(t *testing.T) {
	t.Parallel()

	db := openStorage(t)
	ctx := context.Background()

	base := time.Now()
	var persisted []item.Item
	for i := 0; i < 6; i++ {
		persisted = append(persisted, item.Item{
			ID:        fmt.Sprintf("item-%d", i),
			Content:   item.TextContent(fmt.Sprintf("content %d", i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, db.Save(ctx, persisted))

	s := history.New(clip.NewMemory(), db, notify.NewBus(), history.Options{MaxItems: 4})
	require.NoError(t, s.Reload(ctx))

	items := s.Items()
	require.Len(t, items, 4)
	assert.Equal(t, "item-5", items[0].ID)
	assert.Equal(t, "item-2", items[3].ID)
}

func TestCopyToClipboardDoesNotMutateHistory(t *testing.T) {
	t.Parallel()

	s, mem := newStore(t, history.Options{})
	ctx := context.Background()

	it := s.Insert(ctx, item.TextContent("recall me"))
	s.Insert(ctx, item.TextContent("newer"))

	require.NoError(t, s.CopyToClipboard(it.ID))

	got, ok, err := mem.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(it.Content))
	// History order is untouched until the poll loop observes the write.
	assert.Equal(t, "newer", s.Items()[0].Content.Text)

	assert.ErrorIs(t, s.CopyToClipboard("nope"), history.ErrNotFound)
}

func TestPollCapturesGenuineChanges(t *testing.T) {
	t.Parallel()

	s, mem := newStore(t, history.Options{PollInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	require.NoError(t, mem.Write(item.TextContent("hello")))
	require.Eventually(t, func() bool { return s.Len() == 1 },
		time.Second, time.Millisecond)

	// Same content with extra whitespace trims to the same text: no insert.
	require.NoError(t, mem.Write(item.TextContent("  hello \n")))
	assert.Never(t, func() bool { return s.Len() > 1 },
		50*time.Millisecond, 5*time.Millisecond)

	require.NoError(t, mem.Write(item.TextContent("world")))
	require.Eventually(t, func() bool { return s.Len() == 2 },
		time.Second, time.Millisecond)
	assert.Equal(t, "world", s.Items()[0].Content.Text)
}

func TestPollIgnoresWhitespaceOnlyText(t *testing.T) {
	t.Parallel()

	s, mem := newStore(t, history.Options{PollInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	require.NoError(t, mem.Write(item.TextContent("  \t\n ")))
	assert.Never(t, func() bool { return s.Len() > 0 },
		50*time.Millisecond, 5*time.Millisecond)
}

func TestPollCapturesImages(t *testing.T) {
	t.Parallel()

	s, mem := newStore(t, history.Options{PollInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	require.NoError(t, mem.Write(item.ImageContent(png)))
	require.Eventually(t, func() bool { return s.Len() == 1 },
		time.Second, time.Millisecond)
	assert.Equal(t, item.KindImage, s.Items()[0].Content.Kind)
}

func TestDeleteAllSuspendsPolling(t *testing.T) {
	t.Parallel()

	s, mem := newStore(t, history.Options{
		PollInterval: 5 * time.Millisecond,
		ResumeDelay:  100 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	require.NoError(t, mem.Write(item.TextContent("before clear")))
	require.Eventually(t, func() bool { return s.Len() == 1 },
		time.Second, time.Millisecond)

	s.DeleteAll(ctx)
	require.Equal(t, 0, s.Len())

	// New clipboard content during the suspension window is not captured…
	require.NoError(t, mem.Write(item.TextContent("during pause")))
	assert.Never(t, func() bool { return s.Len() > 0 },
		50*time.Millisecond, 5*time.Millisecond)

	// …but polling resumes afterwards.
	require.Eventually(t, func() bool { return s.Len() == 1 },
		time.Second, time.Millisecond)
	assert.Equal(t, "during pause", s.Items()[0].Content.Text)
}

func TestChangeEventPropagatesBetweenStores(t *testing.T) {
	t.Parallel()

	// Two stores over the same persisted list and bus, as two processes
	// would be over the shared database and the daemon's change relay.
	db := openStorage(t)
	bus := notify.NewBus()

	a := history.New(clip.NewMemory(), db, bus, history.Options{Source: "proc-a"})
	b := history.New(clip.NewMemory(), db, bus, history.Options{Source: "proc-b"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, unsub := bus.Subscribe()
	defer unsub()
	go b.WatchChanges(ctx, ch)

	a.Insert(ctx, item.TextContent("shared secret? no, shared string"))

	require.Eventually(t, func() bool { return b.Len() == 1 },
		time.Second, time.Millisecond)
	assert.Equal(t, "shared secret? no, shared string", b.Items()[0].Content.Text)
}

func TestWatchChangesIgnoresOwnSource(t *testing.T) {
	t.Parallel()

	db := openStorage(t)
	bus := notify.NewBus()
	s := history.New(clip.NewMemory(), db, bus, history.Options{Source: "self"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, unsub := bus.Subscribe()
	defer unsub()
	go s.WatchChanges(ctx, ch)

	// Seed the database behind the store's back, then publish as "self":
	// the store must not reload for its own announcements.
	require.NoError(t, db.Save(ctx, []item.Item{
		{ID: "sneaky", Content: item.TextContent("x"), CreatedAt: time.Now()},
	}))
	bus.Publish(notify.Change{Count: 1, Source: "self"})
	assert.Never(t, func() bool { return s.Len() > 0 },
		50*time.Millisecond, 5*time.Millisecond)

	// A foreign source does trigger the reload.
	bus.Publish(notify.Change{Count: 1, Source: "other"})
	require.Eventually(t, func() bool { return s.Len() == 1 },
		time.Second, time.Millisecond)
}
