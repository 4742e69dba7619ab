// Package ipc provides the local socket channel the CLI tools and change
// subscribers use to talk to a running clipvault daemon: a Unix domain
// socket on POSIX systems, a named pipe on Windows.
package ipc

import (
	"net"
	"os"
)

// SocketPath returns the platform-appropriate IPC endpoint, honouring the
// CLIPVAULT_SOCKET override.
func SocketPath() string {
	if s := os.Getenv("CLIPVAULT_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a clipvault daemon appears to be listening on
// the IPC socket. A cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a net.Listener on the IPC endpoint, removing any stale
// socket file left by a crashed run.
func Listen() (net.Listener, error) {
	path := SocketPath()
	_ = os.Remove(path)
	return listenIPC(path)
}

// Dial connects to a running daemon.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath())
}
