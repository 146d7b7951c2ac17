// Package pipeline implements the Markdown-to-WeChat conversion stages.
//
// Each stage is a plain function or a small interface so the root package can
// swap implementations:
//   - Markdown preprocessing (byte order mark, line endings, front matter)
//   - Markdown to HTML via goldmark (GFM, typographer, chroma, math, emoji)
//   - Code newline fix-up (\n inside <code> becomes <br/>)
//   - Container wrap and CSS inlining via go-premailer
//   - Image src resolution against the note's vault
//
// No stage fails on malformed Markdown. Errors only come from the third-party
// renderer or inliner, or from context cancellation.
package pipeline
