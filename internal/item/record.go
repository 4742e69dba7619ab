package item

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedRecord marks a persisted or received record that cannot be
// turned into an Item. Loaders skip such records rather than failing.
var ErrMalformedRecord = errors.New("malformed history record")

// Record is the serialised form of an Item, used in the history database
// and on the IPC wire. Exactly one of Text and Image must be set; Image is
// base64 inside JSON (encoding/json []byte behaviour).
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Text      string    `json:"text,omitempty"`
	Image     []byte    `json:"image,omitempty"`
}

// Record converts the Item to its serialised form.
func (it Item) Record() Record {
	r := Record{ID: it.ID, CreatedAt: it.CreatedAt}
	switch it.Content.Kind {
	case KindText:
		r.Text = it.Content.Text
	case KindImage:
		r.Image = it.Content.Image
	}
	return r
}

// Item validates the record and converts it back to an Item. A record with
// no ID, with both payloads set, or with neither returns ErrMalformedRecord.
func (r Record) Item() (Item, error) {
	if r.ID == "" {
		return Item{}, fmt.Errorf("%w: missing id", ErrMalformedRecord)
	}
	hasText := r.Text != ""
	hasImage := len(r.Image) > 0
	switch {
	case hasText && hasImage:
		return Item{}, fmt.Errorf("%w: both text and image set", ErrMalformedRecord)
	case hasText:
		return Item{ID: r.ID, Content: TextContent(r.Text), CreatedAt: r.CreatedAt}, nil
	case hasImage:
		return Item{ID: r.ID, Content: ImageContent(r.Image), CreatedAt: r.CreatedAt}, nil
	default:
		return Item{}, fmt.Errorf("%w: no payload", ErrMalformedRecord)
	}
}
