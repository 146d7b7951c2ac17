package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultHighlightStyle is the chroma style used for fenced code.
const DefaultHighlightStyle = "github"

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// RenderOptions configures GoldmarkConverter.
type RenderOptions struct {
	// HighlightStyle names a chroma style. Empty uses DefaultHighlightStyle.
	HighlightStyle string
	// Emoji enables :shortcode: replacement.
	Emoji bool
	// HardWraps renders single newlines in paragraphs as <br>.
	HardWraps bool
	// Highlights renders ==text== as <mark>.
	Highlights bool
	// Math renders captured TeX. Nil uses EscapedMath.
	Math MathRenderer
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a converter with raw HTML passthrough, GFM
// (tables, strikethrough, linkify, task lists), typographer, footnotes,
// inline-styled syntax highlighting and math capture.
//
// Fences with an unknown language render as plain <pre><code>; the
// highlighter never guesses and never logs.
func NewGoldmarkConverter(opts RenderOptions) *GoldmarkConverter {
	style := opts.HighlightStyle
	if style == "" {
		style = DefaultHighlightStyle
	}
	mathRenderer := opts.Math
	if mathRenderer == nil {
		mathRenderer = EscapedMath{}
	}

	extensions := []goldmark.Extender{
		extension.GFM,
		extension.Typographer,
		extension.Footnote,
		highlighting.NewHighlighting(
			highlighting.WithStyle(style),
			highlighting.WithGuessLanguage(false),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(false), // inline styles survive the paste target
			),
		),
		NewMathExtension(mathRenderer),
	}
	if opts.Emoji {
		extensions = append(extensions, emoji.New(emoji.WithRenderingMethod(emoji.Unicode)))
	}
	if opts.Highlights {
		extensions = append(extensions, MarkExtension)
	}

	htmlOpts := []renderer.Option{html.WithUnsafe(), html.WithXHTML()}
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
// goldmark has no context support, so conversion runs in a goroutine and the
// caller stops waiting on cancellation.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Compile-time interface check.
var _ HTMLConverter = (*GoldmarkConverter)(nil)
