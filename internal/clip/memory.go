package clip

import (
	"sync"

	"go.klb.dev/clipvault/internal/item"
)

// Memory is an in-process clipboard. Tests drive the history poll loop
// through it, and `serve --backend memory` uses it for demo runs.
type Memory struct {
	mu      sync.Mutex
	content item.Content
	set     bool
}

// NewMemory returns an empty in-process clipboard.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Read() (item.Content, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return item.Content{}, false, nil
	}
	return m.content, true, nil
}

func (m *Memory) Write(c item.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = c
	m.set = !c.Empty()
	return nil
}

// Clear empties the clipboard.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = item.Content{}
	m.set = false
}

func (m *Memory) Close() {}
