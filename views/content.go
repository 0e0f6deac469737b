package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Content wraps already-transformed post HTML as a templ.Component so user
// templates can drop it straight into a layout. The HTML is trusted admin
// input; it is emitted as-is.
func Content(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}
