package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"estcheck"
	"estcheck/internal/cache"
	"estcheck/internal/config"
	"estcheck/internal/diag"
	"estcheck/internal/diagfmt"
	"estcheck/internal/driver"
	"estcheck/internal/source"
	"estcheck/internal/trace"
	"estcheck/internal/version"
)

// stdinName is the display path of an AST read from standard input.
const stdinName = "<stdin>"

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <file.json|directory|->",
		Short: "Check ESTree JSON files for early errors",
		Long: `Check an ESTree program stored as JSON, every *.json file within a directory,
or a program read from standard input ("-"). Settings are taken from the nearest
estcheck.toml; flags override them.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().String("mode", "script", "goal symbol (script|module|eval)")
	cmd.Flags().Bool("strict", false, "validate as strict code (modules always are)")
	cmd.Flags().StringArray("global", nil, "pre-existing binding name[:kind[:duplicable]] (repeatable)")
	cmd.Flags().String("closure-context", "", "closure a direct eval runs in (null|function|arrow|method|constructor|derived-constructor)")
	cmd.Flags().Bool("function-expression-ancestor", false, "eval inside an arrow has a non-arrow function around it")
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().Bool("disk-cache", false, "reuse results stored in the user cache directory")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Int("width", 0, "clip pretty messages to this many columns (0=unlimited)")
	return cmd
}

// checkSettings is the merged view of estcheck.toml and the command flags.
type checkSettings struct {
	mode           estcheck.Mode
	options        estcheck.Options
	maxDiagnostics int
	format         string
	color          string
}

// resolveCheckSettings накладывает явно заданные флаги поверх конфигурации.
// --global добавляется к [[global]] из файла.
func resolveCheckSettings(cmd *cobra.Command, cfg *config.Config) (checkSettings, error) {
	merged := *cfg
	merged.Globals = append([]config.GlobalConfig(nil), cfg.Globals...)
	flags := cmd.Flags()
	persistent := cmd.Root().PersistentFlags()

	if flags.Changed("mode") {
		merged.Check.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("strict") {
		merged.Check.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("closure-context") {
		merged.Check.ClosureContext, _ = flags.GetString("closure-context")
	}
	if flags.Changed("function-expression-ancestor") {
		merged.Check.FunctionExpressionAncestor, _ = flags.GetBool("function-expression-ancestor")
	}
	if flags.Changed("format") {
		merged.Output.Format, _ = flags.GetString("format")
	}
	if persistent.Changed("color") {
		merged.Output.Color, _ = persistent.GetString("color")
	}
	if persistent.Changed("max-diagnostics") {
		merged.Check.MaxDiagnostics, _ = persistent.GetInt("max-diagnostics")
		if merged.Check.MaxDiagnostics < 0 {
			return checkSettings{}, errors.New("--max-diagnostics must not be negative")
		}
	}

	globals, err := flags.GetStringArray("global")
	if err != nil {
		return checkSettings{}, fmt.Errorf("failed to get global flag: %w", err)
	}
	for _, spec := range globals {
		g, err := parseGlobal(spec)
		if err != nil {
			return checkSettings{}, err
		}
		merged.Globals = append(merged.Globals, g)
	}

	if err := merged.Validate(); err != nil {
		return checkSettings{}, err
	}
	mode, err := merged.Mode()
	if err != nil {
		return checkSettings{}, err
	}
	return checkSettings{
		mode:           mode,
		options:        merged.Options(),
		maxDiagnostics: merged.Check.MaxDiagnostics,
		format:         merged.Output.Format,
		color:          merged.Output.Color,
	}, nil
}

// parseGlobal разбирает name[:kind[:duplicable]].
func parseGlobal(spec string) (config.GlobalConfig, error) {
	parts := strings.Split(spec, ":")
	if len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return config.GlobalConfig{}, fmt.Errorf("invalid --global %q (expected name[:kind[:duplicable]])", spec)
	}
	g := config.GlobalConfig{Name: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		g.Kind = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		dup, err := strconv.ParseBool(strings.TrimSpace(parts[2]))
		if err != nil {
			return config.GlobalConfig{}, fmt.Errorf("invalid --global %q: duplicable must be true or false", spec)
		}
		g.Duplicable = &dup
	}
	return g, nil
}

// runCheck executes the "check" command. It returns errEarlyErrors, with
// usage and error printing silenced, when any file has early errors.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	target := args[0]
	configStart := target
	if target == "-" {
		configStart = "."
	}
	cfg, _, err := config.Discover(configStart)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", config.FileName, err)
	}
	settings, err := resolveCheckSettings(cmd, cfg)
	if err != nil {
		return err
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		return fmt.Errorf("failed to get width flag: %w", err)
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := driver.DiagnoseOptions{
		Mode:           settings.mode,
		Check:          settings.options,
		MaxDiagnostics: settings.maxDiagnostics,
		EnableTimings:  showTimings,
		Memory:         cache.NewMemory(0),
	}
	if enableDiskCache {
		disk, openErr := cache.Open(cacheApp)
		if openErr != nil {
			return fmt.Errorf("failed to open disk cache: %w", openErr)
		}
		opts.DiskCache = disk
	}

	ctx := cmd.Context()
	span := trace.BeginWith(trace.FromContext(ctx), trace.ScopeDriver, "check", 0,
		trace.Attrs{Path: target, Mode: settings.mode.String()})
	ctx = trace.WithParent(ctx, span)

	inputs, results, baseDir, err := collectResults(ctx, cmd.InOrStdin(), target, &opts, jobs)
	span.End("")
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	useColor := settings.color == "on" || (settings.color == "auto" && out == os.Stdout && isTerminal(os.Stdout))

	switch settings.format {
	case "pretty":
		for _, in := range inputs {
			diagfmt.Pretty(out, in, diagfmt.PrettyOpts{
				Color:     useColor,
				PathMode:  pathMode,
				BaseDir:   baseDir,
				Width:     width,
				ShowNotes: withNotes,
			})
		}
		if !quiet {
			diagfmt.Summary(out, diagfmt.CountErrors(inputs), len(inputs), useColor)
		}
	case "short":
		for _, in := range inputs {
			if in.Bag == nil {
				continue
			}
			text := diag.FormatGoldenDiagnostics(in.Bag.Items(), in.DisplayPath(pathMode, baseDir), withNotes)
			if text != "" {
				fmt.Fprintln(out, text)
			}
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{PathMode: pathMode, BaseDir: baseDir, IncludeNotes: withNotes}
		if err := diagfmt.JSON(out, inputs, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "estcheck",
			ToolVersion:    version.Version,
			InvocationArgs: append(strings.Fields(cmd.CommandPath()), args...),
			PathMode:       pathMode,
			BaseDir:        baseDir,
		}
		if err := diagfmt.Sarif(out, inputs, meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", settings.format)
	}

	if showTimings && !quiet && (settings.format == "pretty" || settings.format == "short") {
		printTimings(cmd.ErrOrStderr(), results)
	}

	for _, r := range results {
		if r.HasErrors() {
			// Diagnostics already printed
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return errEarlyErrors
		}
	}
	return nil
}

// collectResults dispatches on the kind of target and returns the inputs
// for the renderers in path order.
func collectResults(ctx context.Context, stdin io.Reader, target string, opts *driver.DiagnoseOptions, jobs int) ([]diagfmt.Input, []driver.DiagnoseResult, string, error) {
	if target == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		res, err := driver.DiagnoseSource(ctx, source.NewFileSet(), stdinName, data, opts)
		if err != nil {
			return nil, nil, "", err
		}
		return []diagfmt.Input{toInput(*res)}, []driver.DiagnoseResult{*res}, "", nil
	}

	st, err := os.Stat(target)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to stat path: %w", err)
	}

	if !st.IsDir() {
		fs := source.NewFileSetWithBase(filepath.Dir(target))
		res, err := driver.DiagnoseFile(ctx, fs, target, opts)
		if err != nil {
			return nil, nil, "", err
		}
		return []diagfmt.Input{toInput(*res)}, []driver.DiagnoseResult{*res}, fs.BaseDir(), nil
	}

	fs, results, err := driver.DiagnoseDir(ctx, target, opts, jobs)
	if err != nil {
		return nil, nil, "", err
	}
	inputs := make([]diagfmt.Input, len(results))
	for i, r := range results {
		inputs[i] = toInput(r)
	}
	return inputs, results, fs.BaseDir(), nil
}

func toInput(r driver.DiagnoseResult) diagfmt.Input {
	return diagfmt.Input{File: r.File, Path: r.Path, Bag: r.Bag}
}
