package render

import (
	"bytes"
	"html"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Transform turns markdown narrative text into display text.
type Transform interface {
	Transform(markdown string) (string, error)
}

// TransformFunc adapts a function to Transform.
type TransformFunc func(string) (string, error)

func (f TransformFunc) Transform(s string) (string, error) { return f(s) }

// Noop passes text through unmodified.
var Noop Transform = TransformFunc(func(s string) (string, error) { return s, nil })

// HTMLTransform renders GitHub-flavoured markdown with hard line breaks and
// sanitises the result.
type HTMLTransform struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTMLTransform returns an HTMLTransform using the UGC sanitising policy.
func NewHTMLTransform() *HTMLTransform {
	return &HTMLTransform{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

func (t *HTMLTransform) Transform(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := t.md.Convert([]byte(markdown), &buf); err != nil {
		return "", errors.Wrap(err, "render: markdown to html")
	}
	return strings.TrimSpace(t.policy.Sanitize(buf.String())), nil
}

// TerminalTransform renders markdown for a terminal with glamour.
type TerminalTransform struct {
	style string
	width int

	once sync.Once
	r    *glamour.TermRenderer
	err  error
}

// NewTerminalTransform returns a TerminalTransform. An empty style picks the
// style from the terminal background; width <= 0 defaults to 80 columns.
func NewTerminalTransform(style string, width int) *TerminalTransform {
	if width <= 0 {
		width = 80
	}
	return &TerminalTransform{style: style, width: width}
}

func (t *TerminalTransform) Transform(markdown string) (string, error) {
	t.once.Do(func() {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(t.width)}
		if t.style == "" {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle(t.style))
		}
		t.r, t.err = glamour.NewTermRenderer(opts...)
	})
	if t.err != nil {
		return "", errors.Wrap(t.err, "render: terminal renderer")
	}
	out, err := t.r.Render(markdown)
	if err != nil {
		return "", errors.Wrap(err, "render: markdown to terminal")
	}
	return strings.Trim(out, "\n"), nil
}

// HTMLEscape escapes text for an HTML surface.
func HTMLEscape(s string) string { return html.EscapeString(s) }

// TerminalEscape drops control characters other than newline and tab so
// user text cannot carry terminal escape sequences.
func TerminalEscape(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		default:
			return r
		}
	}, s)
}
