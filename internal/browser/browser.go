// Package browser opens URLs with the desktop's default handler.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/fileutil"
)

// ErrInvalidURL is returned for anything other than an http(s) URL.
var ErrInvalidURL = errors.New("browser: only http and https URLs can be opened")

// run starts the launcher. Replaced in tests.
var run = func(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- fixed launcher, validated URL
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Open launches the default browser on url without waiting for it to exit.
func Open(ctx context.Context, url string) error {
	if !fileutil.IsURL(url) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	name, args := command(url)
	if err := run(ctx, name, args...); err != nil {
		return fmt.Errorf("browser: starting %s: %w", name, err)
	}
	return nil
}
