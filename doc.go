// Package md2wechat converts Markdown notes into inline-styled HTML that
// survives pasting into the WeChat public-account article editor.
//
// # Quick Start
//
//	conv := md2wechat.NewConverter()
//
//	result, err := conv.Convert(ctx, md2wechat.Input{
//	    Markdown: "# Hello\n\nWorld",
//	    ThemeCSS: css,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.HTML)
//
// The editor strips <style> elements and class attributes, so every rule of
// the theme stylesheet is moved onto the element it applies to.
//
// # Conversion Pipeline
//
//  1. Front matter removal (leading ---/--- block, parsed into Result.FrontMatter)
//  2. Markdown to HTML via goldmark (GFM, typographer, chroma, math, emoji)
//  3. Code newline fix-up (\n inside <code> becomes <br/>)
//  4. Wrap in <section id="md2wechat">
//  5. CSS inlining via go-premailer
//  6. Relative <img src> resolution through Input.Resolver
//
// # Themes
//
// Stylesheets are selected by the caller. The CLI and the preview server
// resolve them through the theme catalog (bundled stylesheets plus custom
// themes stored in the vault settings file) and pass the CSS in Input.ThemeCSS.
//
// # Configuration
//
//	conv := md2wechat.NewConverter(
//	    md2wechat.WithEmoji(false),
//	    md2wechat.WithKeepClasses(true),
//	    md2wechat.WithInlineFallback(true),
//	)
//
// A Converter holds no per-call state and is safe for concurrent use.
package md2wechat
