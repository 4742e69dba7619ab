package notify

import (
	"context"
	"fmt"
	"log/slog"

	"go.klb.dev/clipvault/internal/ipc"
	"go.klb.dev/clipvault/internal/message"
	"go.klb.dev/clipvault/internal/wire"
)

// PublishRemote announces a Change to the local daemon so that sibling
// processes are told to reload. Best effort: no daemon, no error.
func PublishRemote(c Change) {
	conn, err := ipc.Dial()
	if err != nil {
		return
	}
	defer conn.Close()

	wc := wire.New(conn)
	if err := wc.WriteMsg(&message.Message{
		Type:   message.TypeChanged,
		Count:  c.Count,
		Source: c.Source,
	}); err != nil {
		slog.Debug("remote change publish failed", "err", err)
	}
}

// SubscribeRemote attaches to the daemon's IPC socket and streams Changes
// into the returned channel until ctx is cancelled or the daemon goes
// away, after which the channel is closed.
func SubscribeRemote(ctx context.Context, source string) (<-chan Change, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}

	wc := wire.New(conn)
	if err := wc.WriteMsg(&message.Message{
		Type:   message.TypeSubscribe,
		Source: source,
	}); err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	ch := make(chan Change, 16)

	go func() {
		<-ctx.Done()
		_ = wc.Close()
	}()
	go func() {
		defer close(ch)
		for {
			msg, err := wc.ReadMsg()
			if err != nil {
				return
			}
			if msg.Type != message.TypeChanged {
				continue
			}
			select {
			case ch <- Change{Count: msg.Count, Source: msg.Source}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}
