// Package wire frames clipvault messages as newline-delimited JSON over a
// net.Conn. Every line is exactly one message: <json>\n.
package wire

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"go.klb.dev/clipvault/internal/message"
)

const (
	// MaxMessageSize is the largest message we will read (16 MiB). Image
	// payloads ride base64-encoded inside the line, so this bounds them too.
	MaxMessageSize = 16 * 1024 * 1024

	writeDeadline = 5 * time.Second
)

// Conn wraps a net.Conn with buffered newline-delimited JSON framing.
type Conn struct {
	conn net.Conn
	br   *bufio.Reader
}

// New wraps conn.
func New(conn net.Conn) *Conn {
	return &Conn{
		conn: conn,
		br:   bufio.NewReaderSize(conn, 64*1024),
	}
}

// SetReadDeadline sets the read deadline d from now, or clears it when d
// is zero.
func (c *Conn) SetReadDeadline(d time.Duration) {
	if d == 0 {
		_ = c.conn.SetReadDeadline(time.Time{})
	} else {
		_ = c.conn.SetReadDeadline(time.Now().Add(d))
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// WriteMsg serialises msg and writes it followed by a newline.
func (c *Conn) WriteMsg(msg *message.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	line := append(raw, '\n')

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	_, err = c.conn.Write(line)
	_ = c.conn.SetWriteDeadline(time.Time{})
	return err
}

// ReadMsg reads one newline-terminated line and deserialises it.
func (c *Conn) ReadMsg() (*message.Message, error) {
	line, err := c.br.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	if len(line) > MaxMessageSize {
		return nil, fmt.Errorf("message too large (%d bytes)", len(line))
	}

	// Strip trailing newline
	line = line[:len(line)-1]

	return message.Decode(line)
}
