package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/yamlutil"
)

var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// A leading block: a "---" line, optional content lines, a closing "---"
	// line, then any trailing whitespace.
	frontMatterBlock = regexp.MustCompile(`(?s)\A---\n(.*?\n)?---(?:\n|\z)\s*`)
)

// FrontMatter holds the recognized keys of a note's YAML header.
type FrontMatter struct {
	Title  string
	Theme  string
	Author string
	Extra  map[string]any // every key, including the recognized ones
}

// MarkdownPreprocessor prepares Markdown before rendering.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) (string, *FrontMatter)
}

// NotePreprocessor drops a leading byte order mark, normalizes line endings
// and strips front matter.
type NotePreprocessor struct{}

// PreprocessMarkdown returns the body to render and the parsed front matter
// (nil when the note has none or it is not a YAML mapping).
func (p *NotePreprocessor) PreprocessMarkdown(ctx context.Context, content string) (string, *FrontMatter) {
	if ctx.Err() != nil {
		return content, nil
	}

	content = normalizeLineEndings(strings.TrimPrefix(content, "\ufeff"))
	body, raw := StripFrontMatter(content)
	return body, parseFrontMatter(raw)
}

// StripFrontMatter removes a leading ---/--- block and the whitespace after it.
// Only a block at the very start is removed; an unterminated opener is left as is.
// It returns the remaining Markdown and the block's inner text.
func StripFrontMatter(content string) (body, raw string) {
	m := frontMatterBlock.FindStringSubmatchIndex(content)
	if m == nil {
		return content, ""
	}
	if m[2] >= 0 {
		raw = content[m[2]:m[3]]
	}
	return content[m[1]:], raw
}

func parseFrontMatter(raw string) *FrontMatter {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	m, err := yamlutil.DecodeMapping([]byte(raw))
	if err != nil {
		return nil
	}
	fm := &FrontMatter{Extra: m}
	fm.Title, _ = m["title"].(string)
	fm.Theme, _ = m["theme"].(string)
	fm.Author, _ = m["author"].(string)
	return fm
}

func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
