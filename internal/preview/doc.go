// Package preview serves a live preview of the active note over HTTP.
//
// The page opens a WebSocket to /ws and receives a "render" message each time
// the preview must be redrawn:
//
//	open          a page connected, or the server started with a note
//	switch-file   the active note changed (POST /api/active)
//	modify        the active note was written on disk
//	theme-change  the selected theme or a custom theme changed
//
// Only modify preserves the page's scroll position. Theme mutations made
// through the /api/themes endpoints, the CLI or a hand edit of the settings
// file also broadcast a "themes" message so open pages refresh their picker.
package preview
