package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/term"
)

// Markdowner is implemented by payloads that know how to present themselves
// as Markdown. Other payloads fall back to a fenced JSON block.
type Markdowner interface {
	Markdown() string
}

func (w *Writer) writeMarkdown(v any, styled bool) error {
	var md string
	switch resp := v.(type) {
	case *Response:
		md = responseMarkdown(resp)
	case *ErrorResponse:
		md = errorMarkdown(resp)
	default:
		return w.writeJSON(v)
	}

	if !styled {
		_, err := io.WriteString(w.opts.Writer, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(terminalWidth(w.opts.Writer)),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w.opts.Writer, out)
	return err
}

func responseMarkdown(resp *Response) string {
	var b strings.Builder
	if resp.Summary != "" {
		b.WriteString("## " + resp.Summary + "\n\n")
	}

	switch d := resp.Data.(type) {
	case Markdowner:
		b.WriteString(d.Markdown())
	case nil:
		b.WriteString("_(no data)_\n")
	case string:
		b.WriteString(d + "\n")
	default:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			data = []byte(fmt.Sprintf("%v", d))
		}
		b.WriteString("```json\n" + string(data) + "\n```\n")
	}

	for _, n := range resp.Notices {
		b.WriteString("\n> **Warning:** " + n + "\n")
	}

	if len(resp.Breadcrumbs) > 0 {
		b.WriteString("\n### Next\n\n")
		for _, c := range resp.Breadcrumbs {
			fmt.Fprintf(&b, "- `%s` %s\n", c.Cmd, c.Description)
		}
	}
	return b.String()
}

func errorMarkdown(resp *ErrorResponse) string {
	s := "**Error:** " + resp.Error + "\n"
	if resp.Hint != "" {
		s += "\n_Hint: " + resp.Hint + "_\n"
	}
	return s
}

// terminalWidth returns the writer's terminal width, or 80 when unknown.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(f.Fd()); err == nil && width >= 40 {
			return width
		}
	}
	return 80
}
