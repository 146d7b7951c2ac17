package md2wechat

import (
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/pipeline"
)

// ImageResolver maps a vault-relative file path (slash separated) to the URL
// the output should reference. It returns false when the file does not exist.
type ImageResolver = pipeline.ImageResolver

// MathRenderer renders TeX captured from $…$, $$…$$, \(…\) and \[…\].
type MathRenderer = pipeline.MathRenderer

// MathMode tells a MathRenderer where a formula sits.
type MathMode = pipeline.MathMode

// Math placements passed to MathRenderer.
const (
	MathInline        = pipeline.MathInline
	MathDisplay       = pipeline.MathDisplay
	MathDisplayInline = pipeline.MathDisplayInline
)

// CSSInliner moves stylesheet rules onto elements' style attributes.
type CSSInliner = pipeline.CSSInliner

// Input is one conversion request.
type Input struct {
	// Markdown is the note source. Empty input yields an empty container.
	Markdown string
	// ThemeCSS is the stylesheet to inline. Empty CSS still goes through the
	// inliner.
	ThemeCSS string
	// NotePath is the note's vault-relative path. Its folder is the first
	// place relative images are looked up.
	NotePath string
	// Resolver resolves relative image sources. Nil leaves them unchanged.
	Resolver ImageResolver
}

// Result is the output of Convert.
type Result struct {
	// HTML is the <section id="md2wechat"> element with inline styles.
	HTML string
	// FrontMatter holds the note's YAML header, nil when absent or unparsable.
	FrontMatter *FrontMatter
	// Inlined is false when WithInlineFallback returned un-inlined HTML.
	Inlined bool
}

// FrontMatter holds the recognized keys of a note's YAML header.
type FrontMatter = pipeline.FrontMatter

// converterConfig holds per-converter settings applied by options.
type converterConfig struct {
	emoji          bool
	highlights     bool
	hardWraps      bool
	keepClasses    bool
	inlineFallback bool
	highlightStyle string
	math           MathRenderer
	inliner        CSSInliner
}

// Option configures a Converter.
type Option func(*converterConfig)

// WithEmoji toggles :shortcode: replacement. Enabled by default.
func WithEmoji(enabled bool) Option {
	return func(c *converterConfig) { c.emoji = enabled }
}

// WithHighlights toggles ==text== to <mark> conversion. Disabled by default.
func WithHighlights(enabled bool) Option {
	return func(c *converterConfig) { c.highlights = enabled }
}

// WithHardWraps renders single newlines inside paragraphs as line breaks.
func WithHardWraps(enabled bool) Option {
	return func(c *converterConfig) { c.hardWraps = enabled }
}

// WithKeepClasses keeps class attributes after inlining.
// The default removes them; the paste target discards them anyway.
func WithKeepClasses(keep bool) Option {
	return func(c *converterConfig) { c.keepClasses = keep }
}

// WithInlineFallback makes Convert return the un-inlined container instead
// of an error when the inliner fails. Result.Inlined reports which happened.
func WithInlineFallback(enabled bool) Option {
	return func(c *converterConfig) { c.inlineFallback = enabled }
}

// WithHighlightStyle selects the chroma style for fenced code.
func WithHighlightStyle(name string) Option {
	return func(c *converterConfig) { c.highlightStyle = name }
}

// WithMathRenderer replaces the default escaped-TeX math output.
func WithMathRenderer(r MathRenderer) Option {
	return func(c *converterConfig) { c.math = r }
}

// WithInliner replaces the go-premailer inliner.
func WithInliner(i CSSInliner) Option {
	return func(c *converterConfig) { c.inliner = i }
}
