// Package vault resolves notes and attachments inside a directory of
// Markdown files. Paths exchanged with callers are vault-relative and use
// forward slashes regardless of platform.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/fileutil"
)

// Sentinel errors for vault operations.
var (
	ErrNotDirectory = errors.New("vault root is not a directory")
	ErrOutsideVault = errors.New("path is outside the vault")
	ErrNoteNotFound = errors.New("note not found")
	ErrNotMarkdown  = errors.New("not a markdown file")
)

// Vault is a directory of notes.
type Vault struct {
	root string
}

// Open returns the vault rooted at dir.
func Open(dir string) (*Vault, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDirectory, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	if !fileutil.DirExists(abs) {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return &Vault{root: abs}, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string { return v.root }

// Rel converts p (absolute, or relative to the working directory) into a
// vault-relative slash path.
func (v *Vault) Rel(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	rel, err := filepath.Rel(v.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, p)
	}
	return filepath.ToSlash(rel), nil
}

// Abs converts a vault-relative path into an absolute filesystem path.
// Any ".." segment is rejected rather than resolved.
func (v *Vault) Abs(rel string) (string, error) {
	slash := strings.TrimPrefix(filepath.ToSlash(rel), "/")
	for _, seg := range strings.Split(slash, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %s", ErrOutsideVault, rel)
		}
	}
	clean := path.Clean("/" + slash)
	if clean == "/" {
		return v.root, nil
	}
	return filepath.Join(v.root, filepath.FromSlash(clean[1:])), nil
}

// Exists reports whether rel names a regular file in the vault.
func (v *Vault) Exists(rel string) bool {
	abs, err := v.Abs(rel)
	if err != nil {
		return false
	}
	return fileutil.FileExists(abs)
}

// ReadNote returns the content of a Markdown note.
func (v *Vault) ReadNote(rel string) (string, error) {
	if !fileutil.IsMarkdown(rel) {
		return "", fmt.Errorf("%w: %s", ErrNotMarkdown, rel)
	}
	abs, err := v.Abs(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs) // #nosec G304 -- confined to vault root
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNoteNotFound, rel)
		}
		return "", err
	}
	return string(data), nil
}

// NoteDir returns the vault-relative folder of a note, "" at the root.
func NoteDir(rel string) string {
	dir := path.Dir(filepath.ToSlash(rel))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// Notes lists every Markdown note, sorted. Directories starting with "."
// (editor metadata, settings) are skipped.
func (v *Vault) Notes() ([]string, error) {
	var notes []string
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !fileutil.IsMarkdown(p) {
			return nil
		}
		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return err
		}
		notes = append(notes, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(notes)
	return notes, nil
}

// ResourceMapper turns a vault-relative file path into a displayable URL.
type ResourceMapper func(rel string) string

// FileURLs maps files to file:// URLs, for standalone HTML output.
func (v *Vault) FileURLs() ResourceMapper {
	return func(rel string) string {
		abs, _ := v.Abs(rel)
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
		return u.String()
	}
}

// URLPrefix maps files under an HTTP path prefix, for the preview server.
func URLPrefix(prefix string) ResourceMapper {
	prefix = strings.TrimSuffix(prefix, "/")
	return func(rel string) string {
		u := url.URL{Path: prefix + "/" + rel}
		return u.EscapedPath()
	}
}

// Resolver returns an image resolver that reports files existing in the
// vault through mapper.
func (v *Vault) Resolver(mapper ResourceMapper) func(rel string) (string, bool) {
	return func(rel string) (string, bool) {
		if !v.Exists(rel) {
			return "", false
		}
		return mapper(rel), true
	}
}
