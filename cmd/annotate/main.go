// Command annotate resolves schema annotations in an OpenAPI document and
// prints the resolved value of every leaf.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/itchyny/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/speakeasy-api/openapi/openapi"

	"github.com/speakeasy-api/schemaannotate/annotation"
	"github.com/speakeasy-api/schemaannotate/pkg/oasimport"
	"github.com/speakeasy-api/schemaannotate/pkg/report"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintf(stderr, "annotate: %v\n", err)
		}
		return exitUsage
	}

	opts, err := cfg.options()
	if err != nil {
		fmt.Fprintf(stderr, "annotate: %v\n", err)
		return exitUsage
	}
	opts.Logger = annotation.NewLogger(annotation.ParseLogLevel(cfg.LogLevel), stderr)

	f, err := os.Open(cfg.Input)
	if err != nil {
		fmt.Fprintf(stderr, "annotate: %v\n", err)
		return exitFailed
	}
	defer f.Close()

	doc, err := oasimport.Load(ctx, f)
	if err != nil {
		fmt.Fprintf(stderr, "annotate: %v\n", err)
		return exitFailed
	}

	handlers := make([]annotation.Handler, 0, len(cfg.Namespaces))
	for _, ns := range cfg.Namespaces {
		handlers = append(handlers, annotation.NewFirstWinsHandler(ns))
	}
	rep, err := oasimport.ProcessDocument(ctx, doc, handlers,
		oasimport.Config{Namespaces: cfg.Namespaces, NamePrefix: cfg.NamePrefix}, opts)
	if err != nil {
		fmt.Fprintf(stderr, "annotate: %v\n", err)
		return exitFailed
	}
	for _, w := range rep.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	if err := writeReport(stdout, rep, cfg); err != nil {
		fmt.Fprintf(stderr, "annotate: %v\n", err)
		return exitFailed
	}
	for _, c := range rep.Components {
		if c.Result.HasError() {
			fmt.Fprintf(stderr, "%s: %s", c.Name, report.FormatMessages(c.Result.Messages))
		}
	}

	if cfg.WriteResolved != "" && !rep.HasError() {
		if err := writeResolved(ctx, cfg.WriteResolved, doc, rep, stderr); err != nil {
			fmt.Fprintf(stderr, "annotate: %v\n", err)
			return exitFailed
		}
	}

	if rep.HasError() {
		return exitFailed
	}
	return exitOK
}

func parseArgs(args []string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "path to a TOML config file")
		input      = fs.String("input", "", "OpenAPI document to read")
		namespaces = fs.String("ns", "", "comma separated annotation namespaces")
		prefix     = fs.String("prefix", "", "prefix for generated full names")
		order      = fs.String("order", "", "candidate order: nearest-first or outermost-first")
		skip       = fs.Bool("skip-validation", false, "skip the validation pass")
		logLevel   = fs.String("log-level", "", "error, warn, info or debug")
		output     = fs.String("output", "", "table or yaml")
		write      = fs.String("write", "", "write the document with x-<ns>-resolved extensions to this file")
		color      = fs.String("color", "", "auto, always or never")
		width      = fs.Int("max-width", 0, "truncate table values to this many cells (0: no limit)")
	)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfigFile(*configPath, cfg); err != nil {
			return config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "ns":
			cfg.Namespaces = trimAll(strings.Split(*namespaces, ","))
		case "prefix":
			cfg.NamePrefix = *prefix
		case "order":
			cfg.CandidateOrder = *order
		case "skip-validation":
			cfg.SkipValidation = *skip
		case "log-level":
			cfg.LogLevel = strings.ToLower(*logLevel)
		case "output":
			cfg.Output = *output
		case "write":
			cfg.WriteResolved = *write
		case "color":
			cfg.Color = *color
		case "max-width":
			cfg.MaxValueWidth = *width
		}
	})
	if cfg.Input == "" && fs.NArg() > 0 {
		cfg.Input = fs.Arg(0)
	}

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func writeReport(w io.Writer, rep *oasimport.Report, cfg config) error {
	switch cfg.Output {
	case "yaml":
		out := make(map[string]map[string]map[string]any)
		for _, c := range rep.Components {
			paths := make(map[string]map[string]any)
			for p, props := range c.Resolved {
				if len(props) == 0 {
					continue
				}
				paths[p] = props
			}
			out[c.Name] = paths
		}
		b, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		var rows []report.Row
		for _, c := range rep.Components {
			rows = append(rows, report.Rows(c.Name, c.Resolved)...)
		}
		return report.WriteTable(w, rows, report.TableOptions{
			MaxValueWidth: cfg.MaxValueWidth,
			Color:         useColor(cfg.Color, w),
		})
	}
}

func writeResolved(ctx context.Context, path string, doc *openapi.OpenAPI, rep *oasimport.Report, stderr io.Writer) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	warnings, err := oasimport.WriteResolved(ctx, doc, rep, out)
	for _, w := range warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
