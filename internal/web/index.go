// Package web renders the HTML surface of the rope server.
package web

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

type RunRow struct {
	RunID      uint64
	RopeLength int
	Steps      int
	Visited    int
}

type IndexData struct {
	StreamPath    string
	DefaultLength int
	Subscribers   int
	Runs          []RunRow
}

// IndexPage lists the most recent runs and how to submit new ones.
func IndexPage(d IndexData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!doctype html><html><head><meta charset="utf-8"><title>rope-follow</title></head><body>`+
			`<h1>rope-follow</h1><p>Send <code>RequestRun</code> intents to <code>%s</code>. Default rope length: %d. Subscribers: %d.</p>`,
			templ.EscapeString(d.StreamPath), d.DefaultLength, d.Subscribers); err != nil {
			return err
		}
		if len(d.Runs) == 0 {
			_, err := io.WriteString(w, `<p>No runs yet.</p></body></html>`)
			return err
		}
		if _, err := io.WriteString(w, `<table><thead><tr><th>Run</th><th>Length</th><th>Steps</th><th>Tail positions</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, r := range d.Runs {
			if _, err := fmt.Fprintf(w, `<tr><td>%d</td><td>%d</td><td>%d</td><td>%d</td></tr>`,
				r.RunID, r.RopeLength, r.Steps, r.Visited); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table></body></html>`)
		return err
	})
}
