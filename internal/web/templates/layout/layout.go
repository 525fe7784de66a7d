package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/gameaccounts/internal/model"
)

// PageData is shared by every page
type PageData struct {
	Title string
	// Account is the signed-in account, nil on public pages
	Account *model.Account
}

// Page wraps content in the document shell and navigation bar
func Page(data PageData, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		hw.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		hw.Text(data.Title)
		hw.Raw(`</title></head><body><nav>`)
		if data.Account != nil {
			hw.Raw(`<span class="nickname">`)
			hw.Text(data.Account.Nickname)
			hw.Raw(`</span><form method="post" action="/auth/logout" class="logout"><button type="submit">Sign out</button></form>`)
		}
		hw.Raw(`</nav><main>`)
		hw.Component(ctx, content)
		hw.Raw(`</main></body></html>`)
		return hw.Err()
	})
}

// Writer emits markup and keeps the first write error
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter creates a Writer over w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup
func (hw *Writer) Raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// Text writes escaped text, safe in element bodies and quoted attributes
func (hw *Writer) Text(s string) {
	hw.Raw(templ.EscapeString(s))
}

// URL writes a sanitized, escaped URL for an href or src attribute
func (hw *Writer) URL(s string) {
	hw.Text(string(templ.URL(s)))
}

// Component renders a child component
func (hw *Writer) Component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// Err returns the first write error
func (hw *Writer) Err() error {
	return hw.err
}
