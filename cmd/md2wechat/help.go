package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2wechat <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert markdown notes to WeChat-ready HTML")
	fmt.Fprintln(w, "  themes     List, show, add, edit, remove, or select themes")
	fmt.Fprintln(w, "  preview    Serve a live preview of the vault")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2wechat help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Workspace:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --vault <dir>         Vault root (default: current directory)")
	fmt.Fprintln(w, "      --settings <path>     Settings file (default: <vault>/.md2wechat/settings.json)")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory with styles/<name>.css overriding bundled themes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed progress")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2WECHAT_CONFIG          Config file name or path")
	fmt.Fprintln(w, "  MD2WECHAT_THEME           Theme used by convert")
	fmt.Fprintln(w, "  MD2WECHAT_LOG_LEVEL       Log level")
}

// printRenderUsage prints the Markdown feature toggles.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --no-emoji            Keep :shortcode: text as is")
	fmt.Fprintln(w, "      --highlights          Render ==text== as highlighted text")
	fmt.Fprintln(w, "      --hard-wraps          Render single newlines as line breaks")
	fmt.Fprintln(w, "      --keep-classes        Keep class attributes after inlining")
	fmt.Fprintln(w)
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2wechat convert <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown notes to HTML with inline styles, ready to paste into")
	fmt.Fprintln(w, "the WeChat article editor.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown files or directories inside the vault")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory, or - for stdout (default: next to each note)")
	fmt.Fprintln(w, "  -t, --theme <name>        Theme name (default: front matter, config, then settings)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --strict              Fail instead of emitting un-inlined HTML")
	fmt.Fprintln(w)
	printRenderUsage(w)
	printCommonUsage(w)
}

// printThemesUsage prints usage for the themes command.
func printThemesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2wechat themes <subcommand> [args] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Manage built-in and custom themes.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  list                      List themes; * marks the default")
	fmt.Fprintln(w, "  show <name>               Print a theme's CSS")
	fmt.Fprintln(w, "  add <name> <file|->       Add a custom theme")
	fmt.Fprintln(w, "  edit <name>               Rename a custom theme or replace its CSS")
	fmt.Fprintln(w, "      --name <s>            New name")
	fmt.Fprintln(w, "      --css <file|->        New stylesheet")
	fmt.Fprintln(w, "  remove <name>             Delete a custom theme")
	fmt.Fprintln(w, "  use <name>                Select the default theme")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2wechat preview [note] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve a page that re-renders the selected note whenever it changes,")
	fmt.Fprintln(w, "the note is switched, or the theme changes.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  note     Note to open first (default: first note in the vault)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -l, --listen <addr>       Listen address (default: 127.0.0.1:8765)")
	fmt.Fprintln(w, "      --open                Open the page in a browser")
	fmt.Fprintln(w)
	printRenderUsage(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "themes":
		printThemesUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2wechat version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2wechat help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}
