package clip

import (
	"bytes"
	"fmt"
	"log/slog"

	"golang.design/x/clipboard"

	"go.klb.dev/clipvault/internal/item"
)

type nativeBackend struct{}

// newNative initialises golang.design/x/clipboard, falling back to the
// headless backend when the display environment is unavailable (headless
// servers, containers). Init is called here rather than in init() so that
// CLI sub-commands never touch the display.
func newNative() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("system clipboard unavailable, running headless", "err", err)
		return headlessBackend{}
	}
	return nativeBackend{}
}

func (nativeBackend) Name() string { return "native" }

func (nativeBackend) Read() (item.Content, bool, error) {
	c, ok := pick(clipboard.Read(clipboard.FmtText), func() []byte {
		return clipboard.Read(clipboard.FmtImage)
	})
	return c, ok, nil
}

// pick selects what the clipboard currently holds: non-blank text wins,
// whitespace-only text falls through to the image slot. The image is read
// lazily; most ticks never touch it.
func pick(text []byte, image func() []byte) (item.Content, bool) {
	if len(bytes.TrimSpace(text)) > 0 {
		return item.TextContent(string(text)), true
	}
	if img := image(); len(img) > 0 {
		return item.ImageContent(img), true
	}
	return item.Content{}, false
}

func (nativeBackend) Write(c item.Content) error {
	switch c.Kind {
	case item.KindText:
		clipboard.Write(clipboard.FmtText, []byte(c.Text))
	case item.KindImage:
		clipboard.Write(clipboard.FmtImage, c.Image)
	default:
		return fmt.Errorf("unsupported content kind %q", c.Kind)
	}
	return nil
}

func (nativeBackend) Close() {}
