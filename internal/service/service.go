// Package service serves the clipvault IPC protocol: one request message
// per connection, answered from the history store, except SUBSCRIBE which
// turns the connection into a change-event stream.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"go.klb.dev/clipvault/internal/history"
	"go.klb.dev/clipvault/internal/item"
	"go.klb.dev/clipvault/internal/message"
	"go.klb.dev/clipvault/internal/notify"
	"go.klb.dev/clipvault/internal/wire"
)

// requestReadTimeout bounds how long an accepted connection may sit idle
// before sending its request; past it the connection is dropped.
var requestReadTimeout = 10 * time.Second

// Service bridges IPC connections to the history store and change bus.
type Service struct {
	store     *history.Store
	bus       *notify.Bus
	backend   string
	version   string
	startedAt time.Time
	streams   atomic.Int64
}

// New returns a Service around store and bus. backend and version are
// reported in STATUS_RESPONSE.
func New(store *history.Store, bus *notify.Bus, backend, version string) *Service {
	return &Service{
		store:     store,
		bus:       bus,
		backend:   backend,
		version:   version,
		startedAt: time.Now(),
	}
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("ipc accept failed", "err", err)
			continue
		}
		go s.handle(ctx, conn)
	}
}

func (s *Service) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)

	wc.SetReadDeadline(requestReadTimeout)
	msg, err := wc.ReadMsg()
	if err != nil {
		return
	}
	wc.SetReadDeadline(0)

	switch msg.Type {
	case message.TypeCopy:
		s.handleCopy(ctx, wc, msg)

	case message.TypeList:
		items := s.store.Items()
		recs := make([]item.Record, 0, len(items))
		for _, it := range items {
			recs = append(recs, it.Record())
		}
		_ = wc.WriteMsg(&message.Message{Type: message.TypeListResponse, Records: recs})

	case message.TypeRecall:
		if err := s.store.CopyToClipboard(msg.ID); err != nil {
			_ = wc.WriteMsg(message.Errorf("recall %s: %v", msg.ID, err))
			return
		}
		slog.Debug("item recalled to clipboard", "id", msg.ID, "source", msg.Source)
		_ = wc.WriteMsg(message.OK())

	case message.TypeDelete:
		if err := s.store.Delete(ctx, msg.ID); err != nil {
			_ = wc.WriteMsg(message.Errorf("delete %s: %v", msg.ID, err))
			return
		}
		_ = wc.WriteMsg(message.OK())

	case message.TypeClear:
		s.store.DeleteAll(ctx)
		slog.Info("history cleared", "source", msg.Source)
		_ = wc.WriteMsg(message.OK())

	case message.TypeStatus:
		_ = wc.WriteMsg(&message.Message{
			Type: message.TypeStatusResponse,
			Status: &message.Status{
				Count:       s.store.Len(),
				MaxItems:    s.store.MaxItems(),
				Backend:     s.backend,
				Subscribers: int(s.streams.Load()),
				StartedAt:   s.startedAt,
				Version:     s.version,
			},
		})

	case message.TypeSubscribe:
		s.stream(ctx, wc, msg.Source)

	case message.TypeChanged:
		// A sibling process announcing its own write to the shared store.
		// Fan it out; the daemon's store reloads through its own watcher.
		s.bus.Publish(notify.Change{Count: msg.Count, Source: msg.Source})
		slog.Debug("remote change relayed", "source", msg.Source, "count", msg.Count)

	default:
		_ = wc.WriteMsg(message.Errorf("unknown message type %q", msg.Type))
	}
}

// handleCopy inserts each valid record's content. Malformed records fail
// the request; the sender authored them just now and should know.
func (s *Service) handleCopy(ctx context.Context, wc *wire.Conn, msg *message.Message) {
	if len(msg.Records) == 0 {
		_ = wc.WriteMsg(message.Errorf("copy: no records"))
		return
	}
	for _, rec := range msg.Records {
		it, err := rec.Item()
		if err != nil {
			_ = wc.WriteMsg(message.Errorf("copy: %v", err))
			return
		}
		s.store.Insert(ctx, it.Content)
	}
	slog.Debug("records copied into history", "count", len(msg.Records), "source", msg.Source)
	_ = wc.WriteMsg(message.OK())
}

// stream forwards bus changes to the subscriber until it disconnects or
// ctx is cancelled. Slow subscribers lose events, never block the bus.
func (s *Service) stream(ctx context.Context, wc *wire.Conn, source string) {
	ch, cancel := s.bus.Subscribe()
	defer cancel()

	s.streams.Add(1)
	defer s.streams.Add(-1)
	slog.Info("change subscriber attached", "source", source)
	defer slog.Info("change subscriber detached", "source", source)

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-ch:
			if !ok {
				return
			}
			if err := wc.WriteMsg(&message.Message{
				Type:   message.TypeChanged,
				Count:  c.Count,
				Source: c.Source,
			}); err != nil {
				return
			}
		}
	}
}
