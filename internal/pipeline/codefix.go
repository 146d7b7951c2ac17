package pipeline

import (
	"regexp"
	"strings"
)

// LineBreak replaces newlines inside <code> elements.
const LineBreak = "<br/>"

var (
	codeElement = regexp.MustCompile(`(?s)<code(\s[^>]*)?>(.*?)</code>`)

	// A block's final line terminator, possibly followed by closing tags
	// emitted by the highlighter.
	trailingNewline = regexp.MustCompile(`\n((?:</[a-z]+>)*)\z`)
)

// FixCodeNewlines replaces every literal newline inside <code>…</code> with
// <br/>, because the paste target collapses whitespace in inline elements.
// The newline that terminates a fenced block's last line is dropped rather
// than converted. Attributes and markup outside <code> are left verbatim.
func FixCodeNewlines(htmlContent string) string {
	if !strings.Contains(htmlContent, "<code") {
		return htmlContent
	}
	return codeElement.ReplaceAllStringFunc(htmlContent, func(m string) string {
		sub := codeElement.FindStringSubmatch(m)
		attrs, content := sub[1], sub[2]
		if !strings.Contains(content, "\n") {
			return m
		}
		content = trailingNewline.ReplaceAllString(content, "$1")
		content = strings.ReplaceAll(content, "\n", LineBreak)
		return "<code" + attrs + ">" + content + "</code>"
	})
}
