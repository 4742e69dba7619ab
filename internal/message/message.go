// Package message defines the clipvault IPC protocol.
//
// All messages are newline-delimited JSON, exactly one message per line:
// <json>\n. Image payloads travel as base64 strings (the encoding/json
// []byte behaviour), so binary content is safe inside the envelope.
package message

import (
	"encoding/json"
	"fmt"
	"time"

	"go.klb.dev/clipvault/internal/item"
)

// Type identifies the kind of message.
type Type string

const (
	TypeCopy           Type = "COPY"
	TypeList           Type = "LIST"
	TypeListResponse   Type = "LIST_RESPONSE"
	TypeRecall         Type = "RECALL"
	TypeDelete         Type = "DELETE"
	TypeClear          Type = "CLEAR"
	TypeStatus         Type = "STATUS"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeSubscribe      Type = "SUBSCRIBE"
	TypeChanged        Type = "CHANGED"
	TypeOK             Type = "OK"
	TypeError          Type = "ERROR"
)

// Status describes a running daemon, returned in STATUS_RESPONSE.
type Status struct {
	Count       int       `json:"count"`
	MaxItems    int       `json:"max_items"`
	Backend     string    `json:"backend"`
	Subscribers int       `json:"subscribers"`
	StartedAt   time.Time `json:"started_at"`
	Version     string    `json:"version,omitempty"`
}

// Message is the top-level IPC envelope.
type Message struct {
	// Always present
	Type   Type   `json:"type"`
	Source string `json:"source,omitempty"`

	// COPY / LIST_RESPONSE — history records, newest first
	Records []item.Record `json:"records,omitempty"`

	// RECALL / DELETE — target item identity
	ID string `json:"id,omitempty"`

	// CHANGED — item count after the mutation
	Count int `json:"count,omitempty"`

	// STATUS_RESPONSE
	Status *Status `json:"status,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// OK is the canonical success reply.
func OK() *Message { return &Message{Type: TypeOK} }

// Errorf builds an ERROR reply.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}
