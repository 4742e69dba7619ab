package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipvault/internal/notify"
)

func TestBusFansOutToAllSubscribers(t *testing.T) {
	t.Parallel()

	bus := notify.NewBus()
	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	want := notify.Change{Count: 3, Source: "tester"}
	bus.Publish(want)

	assert.Equal(t, want, <-a)
	assert.Equal(t, want, <-b)
}

func TestBusCancelRemovesSubscriber(t *testing.T) {
	t.Parallel()

	bus := notify.NewBus()
	ch, cancel := bus.Subscribe()
	require.Equal(t, 1, bus.Subscribers())

	cancel()
	assert.Equal(t, 0, bus.Subscribers())

	// The channel is closed and publishing is a no-op for it.
	_, ok := <-ch
	assert.False(t, ok)

	// Cancelling twice must not panic.
	cancel()
}

func TestBusPublishNeverBlocks(t *testing.T) {
	t.Parallel()

	bus := notify.NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	// Nobody drains ch; well past the buffer size, Publish must still
	// return promptly.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			bus.Publish(notify.Change{Count: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The buffered prefix is still delivered in order.
	first := <-ch
	assert.Equal(t, 0, first.Count)
}

func TestBusPublishDuringCancelChurn(t *testing.T) {
	t.Parallel()

	bus := notify.NewBus()
	stop := make(chan struct{})

	// Publishers hammer the bus while subscribers attach and detach; a
	// cancel racing a publish must never produce a send on a closed channel.
	var publishers sync.WaitGroup
	for i := 0; i < 4; i++ {
		publishers.Add(1)
		go func() {
			defer publishers.Done()
			for {
				select {
				case <-stop:
					return
				default:
					bus.Publish(notify.Change{Count: 1, Source: "churn"})
				}
			}
		}()
	}

	var churn sync.WaitGroup
	for i := 0; i < 8; i++ {
		churn.Add(1)
		go func() {
			defer churn.Done()
			for j := 0; j < 200; j++ {
				_, cancel := bus.Subscribe()
				cancel()
			}
		}()
	}

	churn.Wait()
	close(stop)
	publishers.Wait()
	assert.Equal(t, 0, bus.Subscribers())
}

func TestBusSubscribersCount(t *testing.T) {
	t.Parallel()

	bus := notify.NewBus()
	assert.Equal(t, 0, bus.Subscribers())

	_, cancelA := bus.Subscribe()
	_, cancelB := bus.Subscribe()
	assert.Equal(t, 2, bus.Subscribers())

	cancelA()
	assert.Equal(t, 1, bus.Subscribers())
	cancelB()
	assert.Equal(t, 0, bus.Subscribers())
}
