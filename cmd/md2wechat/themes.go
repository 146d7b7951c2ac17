package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/hints"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/theme"
)

// ErrReadCSS is returned when a stylesheet cannot be read.
var ErrReadCSS = errors.New("failed to read CSS file")

// themesSubcommands maps each subcommand to its positional argument count.
var themesSubcommands = map[string]int{
	"list":   0,
	"show":   1,
	"add":    2,
	"edit":   1,
	"remove": 1,
	"use":    1,
}

// runThemesCmd parses themes flags and runs a subcommand.
func runThemesCmd(_ context.Context, args []string, env *Environment) error {
	flags, rest, err := parseThemesFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		printThemesUsage(env.Stderr)
		return fmt.Errorf("%w: themes needs a subcommand", ErrUsage)
	}

	sub, rest := rest[0], rest[1:]
	want, ok := themesSubcommands[sub]
	if !ok {
		return fmt.Errorf("%w: unknown themes subcommand %q", ErrUsage, sub)
	}
	if len(rest) != want {
		return fmt.Errorf("%w: themes %s takes %d argument(s), got %d", ErrUsage, sub, want, len(rest))
	}
	if sub == "edit" && flags.name == "" && flags.css == "" {
		return fmt.Errorf("%w: themes edit needs --name or --css", ErrUsage)
	}

	ws, err := openWorkspace(&flags.common, env)
	if err != nil {
		return err
	}
	defer func() { _ = ws.log.Sync() }()

	switch sub {
	case "list":
		return themesList(ws.themes, env.Stdout)
	case "show":
		return themesShow(ws.themes, rest[0], env.Stdout)
	case "add":
		return themesAdd(ws, rest[0], rest[1], flags, env)
	case "edit":
		return themesEdit(ws, rest[0], flags, env)
	case "remove":
		return themesRemove(ws, rest[0], flags, env)
	default: // use
		return themesUse(ws, rest[0], flags, env)
	}
}

// themesList prints every theme; "*" marks the default.
func themesList(s *theme.Service, w io.Writer) error {
	list, def := s.List()
	selected := s.Selected().Name
	if def != selected {
		fmt.Fprintf(w, "warning: default theme %q not found, using %q\n", def, selected)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tALIAS\tSOURCE\tDESCRIPTION")
	for _, t := range list {
		mark := " "
		if t.Name == selected {
			mark = "*"
		}
		source := "custom"
		if t.BuiltIn {
			source = "built-in"
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\n", mark, t.Name, t.Alias, source, t.Description)
	}
	return tw.Flush()
}

// themesShow prints the CSS of a theme.
func themesShow(s *theme.Service, name string, w io.Writer) error {
	t, err := s.Get(name)
	if err != nil {
		return themeError(err, name, s)
	}
	fmt.Fprint(w, t.CSS)
	if !strings.HasSuffix(t.CSS, "\n") {
		fmt.Fprintln(w)
	}
	return nil
}

// themesAdd creates a custom theme from a file or stdin.
func themesAdd(ws *workspace, name, src string, flags *themesFlags, env *Environment) error {
	css, err := readCSS(src, env)
	if err != nil {
		return err
	}
	t, err := ws.themes.Add(name, css)
	if err != nil {
		return themeError(err, name, ws.themes)
	}
	ws.log.Debug("theme added", zap.String("name", t.Name), zap.String("settings", ws.settingsPath))
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Added theme %s\n", t.Name)
	}
	return nil
}

// themesEdit renames a custom theme and/or replaces its CSS.
func themesEdit(ws *workspace, name string, flags *themesFlags, env *Environment) error {
	current, err := ws.themes.Get(name)
	if err != nil {
		return themeError(err, name, ws.themes)
	}
	if current.BuiltIn {
		return themeError(fmt.Errorf("%w: %q", theme.ErrBuiltinReadOnly, current.Name), current.Name, ws.themes)
	}

	newName, css := current.Name, current.CSS
	if flags.name != "" {
		newName = flags.name
	}
	if flags.css != "" {
		if css, err = readCSS(flags.css, env); err != nil {
			return err
		}
	}

	t, err := ws.themes.Update(current.Name, newName, css)
	if err != nil {
		return themeError(err, newName, ws.themes)
	}
	if !flags.common.quiet {
		if t.Name != current.Name {
			fmt.Fprintf(env.Stdout, "Renamed theme %s to %s\n", current.Name, t.Name)
		} else {
			fmt.Fprintf(env.Stdout, "Updated theme %s\n", t.Name)
		}
	}
	return nil
}

// themesRemove deletes a custom theme.
func themesRemove(ws *workspace, name string, flags *themesFlags, env *Environment) error {
	t, err := ws.themes.Get(name)
	if err != nil {
		return themeError(err, name, ws.themes)
	}
	if err := ws.themes.Delete(t.Name); err != nil {
		return themeError(err, t.Name, ws.themes)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Removed theme %s\n", t.Name)
	}
	return nil
}

// themesUse selects the default theme.
func themesUse(ws *workspace, name string, flags *themesFlags, env *Environment) error {
	if err := ws.themes.SelectDefault(name); err != nil {
		return themeError(err, name, ws.themes)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Default theme is now %s\n", ws.themes.Selected().Name)
	}
	return nil
}

// readCSS reads a stylesheet from path, or from stdin when path is "-".
func readCSS(path string, env *Environment) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(env.Stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- user-provided path
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
	}
	return string(data), nil
}

// themeError appends the hint matching a theme failure.
func themeError(err error, name string, s *theme.Service) error {
	var hint string
	switch {
	case errors.Is(err, theme.ErrThemeNotFound):
		hint = hints.ForThemeNotFound(themeNames(s))
	case errors.Is(err, theme.ErrDuplicateName):
		hint = hints.ForDuplicateTheme()
	case errors.Is(err, theme.ErrInvalidThemeCSS):
		hint = hints.ForInvalidThemeCSS()
	case errors.Is(err, theme.ErrBuiltinReadOnly):
		hint = hints.ForBuiltinTheme(name)
	}
	return fmt.Errorf("%w%s", err, hint)
}
