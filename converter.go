package md2wechat

import (
	"context"
	"fmt"
	"path"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.NotePreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInliner           = (*pipeline.PremailerInliner)(nil)
	_ pipeline.MathRenderer         = pipeline.EscapedMath{}
)

// Converter runs the Markdown to WeChat HTML pipeline.
// Create with NewConverter and call Convert for each note.
type Converter struct {
	cfg           converterConfig
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	inliner       pipeline.CSSInliner
}

// NewConverter creates a Converter. Emoji shortcodes are enabled by default.
func NewConverter(opts ...Option) *Converter {
	cfg := converterConfig{emoji: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Converter{
		cfg:          cfg,
		preprocessor: &pipeline.NotePreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(pipeline.RenderOptions{
			HighlightStyle: cfg.highlightStyle,
			Emoji:          cfg.emoji,
			HardWraps:      cfg.hardWraps,
			Highlights:     cfg.highlights,
			Math:           cfg.math,
		}),
		inliner: cfg.inliner,
	}
	if c.inliner == nil {
		c.inliner = &pipeline.PremailerInliner{KeepClasses: cfg.keepClasses}
	}
	return c
}

// Convert runs the full pipeline on one note.
// Malformed Markdown never fails; errors come from the renderer, the inliner
// or ctx. Recovers from internal panics so a bad note cannot crash a caller
// such as the preview server.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Strip front matter and normalize line endings
	body, fm := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fragment, err := c.htmlConverter.ToHTML(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	// The paste target collapses raw newlines inside <code>
	fragment = pipeline.FixCodeNewlines(fragment)

	wrapped := pipeline.Wrap(fragment)
	res := &Result{FrontMatter: fm, Inlined: true}

	inlined, err := c.inliner.Inline(ctx, wrapped, input.ThemeCSS)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case c.cfg.inlineFallback:
		inlined = wrapped
		res.Inlined = false
	default:
		return nil, fmt.Errorf("inlining CSS: %w", err)
	}

	out, err := pipeline.ResolveImages(inlined, noteDir(input.NotePath), input.Resolver)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageResolve, err)
	}

	res.HTML = out
	return res, nil
}

// noteDir returns the note's vault-relative folder, "" at the root.
func noteDir(notePath string) string {
	if notePath == "" {
		return ""
	}
	dir := path.Dir(notePath)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
