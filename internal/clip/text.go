package clip

import (
	"fmt"

	"github.com/atotto/clipboard"

	"go.klb.dev/clipvault/internal/item"
)

// textBackend drives the platform copy/paste commands (pbcopy, xclip, …)
// through atotto/clipboard. Text only; it never needs cgo or a compositor
// library, which makes it the backend of choice over SSH.
type textBackend struct{}

func (textBackend) Name() string { return "text" }

func (textBackend) Read() (item.Content, bool, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		return item.Content{}, false, fmt.Errorf("clipboard read: %w", err)
	}
	if s == "" {
		return item.Content{}, false, nil
	}
	return item.TextContent(s), true, nil
}

func (textBackend) Write(c item.Content) error {
	if c.Kind != item.KindText {
		return fmt.Errorf("text backend cannot write %s content", c.Kind)
	}
	return clipboard.WriteAll(c.Text)
}

func (textBackend) Close() {}
