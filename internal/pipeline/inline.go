package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vanng822/go-premailer/premailer"
)

// ContainerID identifies the root element wrapping converted content.
// Theme stylesheets scope their selectors under #md2wechat.
const ContainerID = "md2wechat"

// ErrCSSInline indicates the CSS inliner rejected the document.
var ErrCSSInline = errors.New("CSS inlining failed")

// Wrap encloses fragment in the container section.
func Wrap(fragment string) string {
	return `<section id="` + ContainerID + `">` + fragment + `</section>`
}

// CSSInliner moves stylesheet rules onto each element's style attribute.
// The input and output are the wrapped container fragment.
type CSSInliner interface {
	Inline(ctx context.Context, fragment, css string) (string, error)
}

// PremailerInliner inlines CSS with go-premailer, which resolves selector
// specificity and cascade order.
type PremailerInliner struct {
	// KeepClasses retains class attributes after inlining.
	KeepClasses bool
}

// Inline returns the container element with styles inlined. The <style>
// element and the document shell added for the inliner are not part of the
// output.
func (p *PremailerInliner) Inline(ctx context.Context, fragment, css string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc := "<html><head><style type=\"text/css\">\n" + sanitizeCSS(css) +
		"\n</style></head><body>" + fragment + "</body></html>"

	opts := premailer.NewOptions()
	opts.RemoveClasses = !p.KeepClasses
	opts.CssToAttributes = false
	opts.KeepBangImportant = false

	pm, err := premailer.NewPremailerFromString(doc, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCSSInline, err)
	}
	out, err := pm.Transform()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCSSInline, err)
	}

	return extractContainer(out)
}

// extractContainer pulls #md2wechat out of a full document. If the inliner
// dropped the id, the body's inner HTML is returned instead.
func extractContainer(document string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCSSInline, err)
	}
	sel := doc.Find("#" + ContainerID).First()
	if sel.Length() == 0 {
		body, err := doc.Find("body").Html()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCSSInline, err)
		}
		return body, nil
	}
	out, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCSSInline, err)
	}
	return out, nil
}

// sanitizeCSS prevents a stylesheet from closing the <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// Compile-time interface check.
var _ CSSInliner = (*PremailerInliner)(nil)
