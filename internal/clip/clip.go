// Package clip provides read/write access to the system clipboard.
//
// Backends:
//
//	native   — golang.design/x/clipboard, text + PNG images (needs a display)
//	text     — atotto/clipboard shelling out to the platform paste tools, text only
//	headless — no-op stub for displayless environments (containers, CI)
//	memory   — in-process clipboard for tests and demo runs
package clip

import (
	"fmt"

	"go.klb.dev/clipvault/internal/item"
)

// Backend is a handle on one clipboard.
type Backend interface {
	// Name returns a human-readable backend name.
	Name() string

	// Read returns the current clipboard content. Non-blank text wins when
	// both text and an image are present; whitespace-only text falls
	// through to the image. ok is false when the clipboard holds neither —
	// an empty clipboard is not an error.
	Read() (c item.Content, ok bool, err error)

	// Write replaces the clipboard content.
	Write(item.Content) error

	// Close releases any resources held by the backend.
	Close()
}

// New selects a backend by name. The empty name selects native, which
// degrades to headless when no display environment is available.
func New(name string) (Backend, error) {
	switch name {
	case "", "native":
		return newNative(), nil
	case "text":
		return textBackend{}, nil
	case "headless":
		return headlessBackend{}, nil
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", name)
	}
}
