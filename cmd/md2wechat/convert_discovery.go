package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/fileutil"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/hints"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/vault"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToConvert represents a single note to process.
type FileToConvert struct {
	InputPath  string
	NotePath   string // vault-relative, slash separated
	OutputPath string // empty when writing to stdout
}

// discoverFiles expands inputs (notes or directories) into the notes to
// convert. Hidden directories are skipped and every note is listed once.
func discoverFiles(v *vault.Vault, inputs []string, outputDir string) ([]FileToConvert, error) {
	var files []FileToConvert
	seen := make(map[string]bool)

	add := func(path string) error {
		rel, err := v.Rel(path)
		if err != nil {
			return fmt.Errorf("%w%s", err, hints.ForVault())
		}
		if seen[rel] {
			return nil
		}
		seen[rel] = true
		files = append(files, FileToConvert{
			InputPath:  path,
			NotePath:   rel,
			OutputPath: resolveOutputPath(path, rel, outputDir),
		})
		return nil
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if err := validateMarkdownExtension(input); err != nil {
				return nil, err
			}
			if err := add(input); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				if path != input && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !fileutil.IsMarkdown(path) {
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// resolveOutputPath determines the HTML output path for a note.
// Without an output directory the HTML lands next to the note; with one,
// the vault layout is mirrored under it.
func resolveOutputPath(inputPath, notePath, outputDir string) string {
	switch outputDir {
	case "":
		return fileutil.ReplaceExt(inputPath, ".html")
	case stdoutOutput:
		return ""
	}
	return filepath.Join(outputDir, filepath.FromSlash(fileutil.ReplaceExt(notePath, ".html")))
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !fileutil.IsMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, MaxWorkers)
	}
	return nil
}
