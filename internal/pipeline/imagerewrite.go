package pipeline

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ImageResolver maps a vault-relative path to a displayable resource path.
// It returns false when no such file exists.
type ImageResolver func(vaultPath string) (string, bool)

// ResolveImages rewrites relative <img src> values through resolve.
//
// A src is looked up relative to noteDir (the note's folder, vault-relative,
// "" for the vault root) and then relative to the vault root. The first hit
// replaces src; a miss leaves src unchanged.
//
// Left untouched:
//   - absolute paths ("/…")
//   - file://, http://, https:// and data: URIs
//   - srcset and CSS url() references
func ResolveImages(htmlContent, noteDir string, resolve ImageResolver) (string, error) {
	if resolve == nil || !strings.Contains(htmlContent, "<img") {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	if !rewriteImages(doc, noteDir, resolve) {
		return htmlContent, nil
	}

	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping.
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the tree back; fragments render children only.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteImages walks the tree and reports whether any src changed.
func rewriteImages(n *html.Node, noteDir string, resolve ImageResolver) bool {
	changed := false
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		for i, attr := range n.Attr {
			if attr.Key != "src" || !isResolvableSrc(attr.Val) {
				continue
			}
			if resolved, ok := lookupImage(attr.Val, noteDir, resolve); ok {
				n.Attr[i].Val = resolved
				changed = true
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if rewriteImages(c, noteDir, resolve) {
			changed = true
		}
	}
	return changed
}

func lookupImage(src, noteDir string, resolve ImageResolver) (string, bool) {
	target := src
	if unescaped, err := url.PathUnescape(src); err == nil {
		target = unescaped
	}
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}

	candidates := []string{path.Join(noteDir, target)}
	if noteDir != "" {
		candidates = append(candidates, path.Clean(target))
	}
	for _, c := range candidates {
		if c == "." || strings.HasPrefix(c, "../") || c == ".." {
			continue
		}
		if resolved, ok := resolve(c); ok {
			return resolved, true
		}
	}
	return "", false
}

// isResolvableSrc reports whether src is a vault-relative reference.
func isResolvableSrc(src string) bool {
	switch {
	case src == "":
		return false
	case strings.HasPrefix(src, "/"),
		strings.HasPrefix(src, "file://"),
		strings.HasPrefix(src, "http://"),
		strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "data:"):
		return false
	}
	return true
}
