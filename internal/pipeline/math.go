package pipeline

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/gohugoio/hugo-goldmark-extensions/passthrough"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MathMode tells a MathRenderer where the formula sits.
type MathMode int

const (
	// MathInline is $…$ or \(…\) within a line of text.
	MathInline MathMode = iota
	// MathDisplay is a standalone $$…$$ or \[…\] block.
	MathDisplay
	// MathDisplayInline is $$…$$ or \[…\] written within a line. The output
	// ends up inside a paragraph, so it must be phrasing content.
	MathDisplayInline
)

// MathRenderer typesets a TeX expression captured from the Markdown source.
// tex has its delimiters removed.
type MathRenderer interface {
	RenderMath(w io.Writer, tex string, mode MathMode) error
}

// EscapedMath writes the TeX source, HTML-escaped, in an element that theme
// CSS can target. It keeps formulas readable where no typesetter runs.
type EscapedMath struct{}

func (EscapedMath) RenderMath(w io.Writer, tex string, mode MathMode) error {
	var open, closing string
	switch mode {
	case MathDisplay:
		open, closing = `<section class="math math-display">`, `</section>`
	case MathDisplayInline:
		open, closing = `<span class="math math-display" style="display:block">`, `</span>`
	default:
		open, closing = `<span class="math math-inline">`, `</span>`
	}
	_, err := io.WriteString(w, open+html.EscapeString(tex)+closing)
	return err
}

// Math delimiters recognized in note bodies. Single-dollar math has its own
// parser so prices such as "$5 and $10" stay text.
var (
	inlineMathDelimiters = []passthrough.Delimiters{
		{Open: `\(`, Close: `\)`},
	}
	blockMathDelimiters = []passthrough.Delimiters{
		{Open: "$$", Close: "$$"},
		{Open: `\[`, Close: `\]`},
	}
)

type mathExtension struct {
	math MathRenderer
}

// NewMathExtension captures $…$, \(…\), $$…$$ and \[…\] verbatim so Markdown
// emphasis rules never touch TeX, then hands each expression to r. A formula
// alone on its lines becomes a display block; one sharing a line with text
// stays in its paragraph.
func NewMathExtension(r MathRenderer) goldmark.Extender {
	return &mathExtension{math: r}
}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	passthrough.New(passthrough.Config{
		InlineDelimiters: inlineMathDelimiters,
		BlockDelimiters:  blockMathDelimiters,
	}).Extend(m)
	m.Parser().AddOptions(
		parser.WithInlineParsers(util.Prioritized(&dollarMathParser{}, 150)),
		// Runs before passthrough's own transformer, which would otherwise
		// move every $$…$$ out of its paragraph.
		parser.WithASTTransformers(util.Prioritized(&inlineDisplayTransformer{}, -1)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&mathNodeRenderer{math: e.math}, 50),
	))
}

// KindInlineMath is the node kind of math that stays within a line.
var KindInlineMath = ast.NewNodeKind("InlineMath")

// InlineMath is math rendered within a line of text. Segment covers the TeX
// without delimiters.
type InlineMath struct {
	ast.BaseInline
	Segment text.Segment
	Mode    MathMode
}

// Kind implements ast.Node.
func (n *InlineMath) Kind() ast.NodeKind { return KindInlineMath }

// Dump implements ast.Node.
func (n *InlineMath) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Mode": fmt.Sprint(int(n.Mode))}, nil)
}

// dollarMathParser applies the usual Markdown math rules to a single $: the
// opener must not be followed by a space or tab, the closer must not be
// preceded by one nor followed by a digit. A "$$" is left to passthrough.
type dollarMathParser struct{}

func (p *dollarMathParser) Trigger() []byte { return []byte{'$'} }

func (p *dollarMathParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) < 3 || line[1] == '$' || isSpaceOrTab(line[1]) {
		return nil
	}
	end := closingDollar(line)
	if end < 0 || isSpaceOrTab(line[end-1]) || (end+1 < len(line) && isDigit(line[end+1])) {
		return nil
	}
	node := &InlineMath{Segment: text.NewSegment(segment.Start+1, segment.Start+end), Mode: MathInline}
	block.Advance(end + 1)
	return node
}

// closingDollar returns the index of the first unescaped $ after line[0],
// or -1.
func closingDollar(line []byte) int {
	for i := 1; i < len(line); i++ {
		if line[i] != '$' {
			continue
		}
		j := i - 1
		for j > 0 && line[j] == '\\' {
			j--
		}
		if (i-j)%2 == 1 {
			return i
		}
	}
	return -1
}

// inlineDisplayTransformer keeps $$…$$ and \[…\] that share a line with
// other text inside their paragraph. A formula alone on its lines is left for
// passthrough to lift into a display block.
type inlineDisplayTransformer struct{}

func (t *inlineDisplayTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	var found []*passthrough.PassthroughInline
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindParagraph {
			return ast.WalkContinue, nil
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			p, ok := c.(*passthrough.PassthroughInline)
			if ok && isDisplayDelimiter(p.Delimiters) && !aloneOnLine(p, source) {
				found = append(found, p)
			}
		}
		return ast.WalkSkipChildren, nil
	})
	for _, p := range found {
		seg := p.Segment
		inner := text.NewSegment(seg.Start+len(p.Delimiters.Open), seg.Stop-len(p.Delimiters.Close))
		parent := p.Parent()
		parent.ReplaceChild(parent, p, &InlineMath{Segment: inner, Mode: MathDisplayInline})
	}
}

func isDisplayDelimiter(d *passthrough.Delimiters) bool {
	if d == nil {
		return false
	}
	for _, b := range blockMathDelimiters {
		if b == *d {
			return true
		}
	}
	return false
}

// aloneOnLine reports whether n starts a line and is followed only by the
// line break goldmark records after every line.
func aloneOnLine(n ast.Node, source []byte) bool {
	if prev := n.PreviousSibling(); prev != nil {
		t, ok := prev.(*ast.Text)
		if !ok || !(t.SoftLineBreak() || t.HardLineBreak()) {
			return false
		}
	}
	next := n.NextSibling()
	if next == nil {
		return true
	}
	t, ok := next.(*ast.Text)
	if !ok || len(bytes.TrimSpace(t.Segment.Value(source))) != 0 {
		return false
	}
	return t.SoftLineBreak() || t.HardLineBreak() || t.NextSibling() == nil
}

func isSpaceOrTab(b byte) bool { return b == ' ' || b == '\t' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

type mathNodeRenderer struct {
	math MathRenderer
}

func (r *mathNodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindInlineMath, r.renderInlineMath)
	reg.Register(passthrough.KindPassthroughInline, r.renderInline)
	reg.Register(passthrough.KindPassthroughBlock, r.renderBlock)
}

func (r *mathNodeRenderer) renderInlineMath(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n, ok := node.(*InlineMath)
	if !ok {
		return ast.WalkContinue, nil
	}
	tex := string(n.Segment.Value(source))
	if n.Mode != MathInline {
		tex = strings.TrimSpace(tex)
	}
	return ast.WalkSkipChildren, r.math.RenderMath(w, tex, n.Mode)
}

func (r *mathNodeRenderer) renderInline(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n, ok := node.(*passthrough.PassthroughInline)
	if !ok {
		return ast.WalkContinue, nil
	}
	raw := string(n.Segment.Value(source))
	mode := MathDisplayInline
	tex := trimMathDelimiters(raw, blockMathDelimiters)
	if tex == raw {
		mode = MathInline
		tex = trimMathDelimiters(raw, inlineMathDelimiters)
	}
	return ast.WalkSkipChildren, r.math.RenderMath(w, strings.TrimSpace(tex), mode)
}

func (r *mathNodeRenderer) renderBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	raw := strings.TrimSpace(buf.String())
	tex := strings.TrimSpace(trimMathDelimiters(raw, blockMathDelimiters))
	if err := r.math.RenderMath(w, tex, MathDisplay); err != nil {
		return ast.WalkStop, err
	}
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

// trimMathDelimiters strips the first matching delimiter pair from raw.
// Pairs are tried in order, so list longer openers first within a set.
func trimMathDelimiters(raw string, delims []passthrough.Delimiters) string {
	for _, d := range delims {
		if len(raw) >= len(d.Open)+len(d.Close) &&
			strings.HasPrefix(raw, d.Open) && strings.HasSuffix(raw, d.Close) {
			return raw[len(d.Open) : len(raw)-len(d.Close)]
		}
	}
	return raw
}
