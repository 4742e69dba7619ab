package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.klb.dev/clipvault/internal/ipc"
	"go.klb.dev/clipvault/internal/message"
	"go.klb.dev/clipvault/internal/wire"
)

// defaultSource returns a human-readable identifier for this process in
// change events and peer listings.
func defaultSource() string {
	if v := os.Getenv("CLIPVAULT_SOURCE"); v != "" {
		return v
	}
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}

// defaultDataDir returns the per-user directory holding the shared history
// database.
func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "clipvault")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "clipvault")
	}
	return filepath.Join(os.TempDir(), "clipvault")
}

// dialDaemon connects to the running daemon's IPC socket.
func dialDaemon() (*wire.Conn, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf(
			"no clipvault daemon on %s (start one with `clipvault serve`): %w",
			ipc.SocketPath(), err,
		)
	}
	return wire.New(conn), nil
}

// request performs one request/response round-trip with the daemon and
// surfaces ERROR replies as errors.
func request(msg *message.Message) (*message.Message, error) {
	wc, err := dialDaemon()
	if err != nil {
		return nil, err
	}
	defer wc.Close()

	if err := wc.WriteMsg(msg); err != nil {
		return nil, fmt.Errorf("send %s: %w", msg.Type, err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	if resp.Type == message.TypeError {
		return nil, fmt.Errorf("daemon: %s", resp.Error)
	}
	return resp, nil
}

// fmtAge renders a timestamp as a short relative age.
func fmtAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
