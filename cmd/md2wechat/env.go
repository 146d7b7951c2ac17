package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/browser"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Stdin   io.Reader
	Getenv  func(string) string
	Environ func() []string
	// OpenURL launches a browser for preview --open.
	OpenURL func(ctx context.Context, url string) error
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		OpenURL: browser.Open,
	}
}
