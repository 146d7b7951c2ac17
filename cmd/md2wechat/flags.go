package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks malformed command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	vault     string
	settings  string
	assetPath string
	logLevel  string
	quiet     bool
	verbose   bool
}

// renderFlags toggles Markdown features for a single run.
type renderFlags struct {
	noEmoji     bool
	highlights  bool
	hardWraps   bool
	keepClasses bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	render  renderFlags
	output  string
	theme   string
	workers int
	strict  bool
}

// previewFlags holds flags for the preview command.
type previewFlags struct {
	common commonFlags
	render renderFlags
	listen string
	open   bool
}

// themesFlags holds flags for the themes subcommands.
type themesFlags struct {
	common commonFlags
	name   string // themes edit: new name
	css    string // themes edit: replacement stylesheet
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.vault, "vault", "", "vault root directory (default: current directory)")
	fs.StringVar(&f.settings, "settings", "", "settings file (default: <vault>/.md2wechat/settings.json)")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory with styles/<name>.css overriding bundled themes")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// addRenderFlags adds Markdown feature toggles to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.BoolVar(&f.noEmoji, "no-emoji", false, "keep :shortcode: text as is")
	fs.BoolVar(&f.highlights, "highlights", false, "render ==text== as highlighted text")
	fs.BoolVar(&f.hardWraps, "hard-wraps", false, "render single newlines as line breaks")
	fs.BoolVar(&f.keepClasses, "keep-classes", false, "keep class attributes after inlining")
}

// newFlagSet creates a FlagSet that returns errors instead of exiting.
// -h/--help prints usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseArgs parses args and maps parse failures to ErrUsage.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	return fs.Args(), nil
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	fs := newFlagSet("convert", w, printConvertUsage)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory, or - for stdout")
	fs.StringVarP(&f.theme, "theme", "t", "", "theme name (default: settings default)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.strict, "strict", false, "fail instead of falling back when CSS inlining fails")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parsePreviewFlags parses preview command flags and returns positional args.
func parsePreviewFlags(args []string, w io.Writer) (*previewFlags, []string, error) {
	fs := newFlagSet("preview", w, printPreviewUsage)
	f := &previewFlags{}

	fs.StringVarP(&f.listen, "listen", "l", "", "listen address (default: 127.0.0.1:8765)")
	fs.BoolVar(&f.open, "open", false, "open the preview in a browser")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parseThemesFlags parses themes subcommand flags and returns positional args.
func parseThemesFlags(args []string, w io.Writer) (*themesFlags, []string, error) {
	fs := newFlagSet("themes", w, printThemesUsage)
	f := &themesFlags{}

	fs.StringVar(&f.name, "name", "", "new theme name (themes edit)")
	fs.StringVar(&f.css, "css", "", "stylesheet file, or - for stdin (themes edit)")
	addCommonFlags(fs, &f.common)

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}
