package clip

import "go.klb.dev/clipvault/internal/item"

// headlessBackend is a no-op clipboard for environments without a display
// server. Reads always report an empty clipboard; writes are discarded.
type headlessBackend struct{}

func (headlessBackend) Name() string                      { return "headless (no-op)" }
func (headlessBackend) Read() (item.Content, bool, error) { return item.Content{}, false, nil }
func (headlessBackend) Write(item.Content) error          { return nil }
func (headlessBackend) Close()                            {}
