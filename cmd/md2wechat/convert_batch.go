package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	md2wechat "github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/fileutil"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/hints"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/theme"
)

// filePermissions is rw-r--r--: HTML output is meant to be readable.
const filePermissions = 0o644

// CLIConverter is the conversion service used by the batch runner.
type CLIConverter interface {
	Convert(ctx context.Context, input md2wechat.Input) (*md2wechat.Result, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*md2wechat.Converter)(nil)

// conversionParams groups parameters shared across the notes of a run.
type conversionParams struct {
	conv     CLIConverter
	themes   *theme.Service
	theme    theme.Theme
	pinned   bool // ignore front matter theme keys
	resolver md2wechat.ImageResolver
	log      *zap.Logger
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Theme      string
	Inlined    bool
	HTML       string // kept only for stdout output
	Err        error
	Duration   time.Duration
}

// convertBatch converts files with up to workers goroutines sharing one
// converter. Results keep the order of files.
func convertBatch(ctx context.Context, files []FileToConvert, workers int, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(max(workers, 1), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single note and returns the result.
func convertFile(ctx context.Context, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	done := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return done(fmt.Errorf("%w: %v", ErrReadMarkdown, err))
	}

	input := md2wechat.Input{
		Markdown: string(content),
		ThemeCSS: params.theme.CSS,
		NotePath: f.NotePath,
		Resolver: params.resolver,
	}
	used := params.theme

	res, err := params.conv.Convert(ctx, input)
	if err != nil {
		return done(fmt.Errorf("%s: %w", f.NotePath, err))
	}

	if want := frontMatterTheme(res); !params.pinned && want != "" && !strings.EqualFold(want, used.Name) {
		t, err := params.themes.Get(want)
		if err != nil {
			params.log.Warn("front matter theme ignored",
				zap.String("note", f.NotePath),
				zap.String("theme", want),
				zap.Error(err),
			)
		} else {
			input.ThemeCSS, used = t.CSS, t
			if res, err = params.conv.Convert(ctx, input); err != nil {
				return done(fmt.Errorf("%s: %w", f.NotePath, err))
			}
		}
	}

	result.Theme = used.Name
	result.Inlined = res.Inlined
	if !res.Inlined {
		params.log.Warn("CSS inlining failed, wrote un-inlined HTML",
			zap.String("note", f.NotePath),
			zap.String("theme", used.Name),
		)
	}

	if f.OutputPath == "" {
		result.HTML = res.HTML
		return done(nil)
	}

	if err := fileutil.WriteFileAtomic(f.OutputPath, []byte(res.HTML), filePermissions); err != nil {
		return done(fmt.Errorf("%w: %v%s", ErrWriteHTML, err, hints.ForOutputDirectory()))
	}
	params.log.Debug("converted",
		zap.String("note", f.NotePath),
		zap.String("output", f.OutputPath),
		zap.String("theme", used.Name),
	)
	return done(nil)
}

// frontMatterTheme returns the "theme" key of the note's front matter.
func frontMatterTheme(res *md2wechat.Result) string {
	if res.FrontMatter == nil {
		return ""
	}
	return strings.TrimSpace(res.FrontMatter.Theme)
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results and returns the number
// of failures. A lone failure is left for the caller to report.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			if len(results) > 1 {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			}
			continue
		}

		if quiet || r.OutputPath == "" {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%s, %v)\n", r.InputPath, r.OutputPath, r.Theme, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
