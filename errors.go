package md2wechat

import (
	"errors"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// ErrHTMLConversion wraps failures reported by the Markdown renderer.
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	// ErrCSSInline wraps failures reported by the CSS inliner.
	ErrCSSInline = pipeline.ErrCSSInline
	// ErrImageResolve wraps HTML parse failures during image resolution.
	ErrImageResolve = errors.New("image resolution failed")
	// ErrInternal reports a recovered panic.
	ErrInternal = errors.New("internal error")
)
