// Package item defines the clipboard history entry: a tagged-union content
// value (text or image), the immutable Item wrapper, and the Record form
// used for persistence and IPC.
package item

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the content variants.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Content is the payload of a history entry. Exactly one of Text and Image
// carries data, selected by Kind.
type Content struct {
	Kind  Kind
	Text  string
	Image []byte // PNG-encoded
}

// TextContent wraps a string as text content.
func TextContent(s string) Content {
	return Content{Kind: KindText, Text: s}
}

// ImageContent wraps PNG bytes as image content.
func ImageContent(b []byte) Content {
	return Content{Kind: KindImage, Image: b}
}

// Equal reports content equality: two text values are equal iff the strings
// match, two images iff the encoded bytes match. Values of different kinds
// are never equal.
func (c Content) Equal(o Content) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindText:
		return c.Text == o.Text
	case KindImage:
		return bytes.Equal(c.Image, o.Image)
	}
	return false
}

// Empty reports whether the content carries no payload.
func (c Content) Empty() bool {
	switch c.Kind {
	case KindText:
		return c.Text == ""
	case KindImage:
		return len(c.Image) == 0
	}
	return true
}

// Fingerprint returns a hex SHA-256 digest over the kind tag and payload.
// Used by the poll loop as a cheap change marker.
func (c Content) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(c.Kind))
	h.Write([]byte{0})
	switch c.Kind {
	case KindText:
		h.Write([]byte(c.Text))
	case KindImage:
		h.Write(c.Image)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Preview returns a short human-readable summary: text truncated to max
// runes, or the byte size for images.
func (c Content) Preview(max int) string {
	switch c.Kind {
	case KindText:
		r := []rune(c.Text)
		if len(r) > max {
			return string(r[:max]) + "…"
		}
		return c.Text
	case KindImage:
		return fmt.Sprintf("image/png (%d bytes)", len(c.Image))
	}
	return ""
}

// Item is a single clipboard history entry. Immutable once created.
type Item struct {
	ID        string
	Content   Content
	CreatedAt time.Time
}

// New mints an Item with a fresh ID and the current time.
func New(c Content) Item {
	return Item{
		ID:        uuid.NewString(),
		Content:   c,
		CreatedAt: time.Now(),
	}
}
