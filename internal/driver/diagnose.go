package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"estcheck"
	"estcheck/estree"
	"estcheck/internal/cache"
	"estcheck/internal/diag"
	"estcheck/internal/observ"
	"estcheck/internal/source"
	"estcheck/internal/trace"
	"estcheck/internal/version"
)

// DiagnoseOptions содержит опции для проверки входных файлов.
type DiagnoseOptions struct {
	Mode           estcheck.Mode
	Check          estcheck.Options
	MaxDiagnostics int
	EnableTimings  bool

	// DiskCache and Memory are optional. Results are keyed by the file
	// content and every option that can change the diagnostics.
	DiskCache *cache.Disk
	Memory    *cache.Memory

	// Observer receives phase boundaries; nil disables it.
	Observer PhaseObserver
}

// DiagnoseResult is the outcome of checking one input file.
type DiagnoseResult struct {
	Path   string
	FileID source.FileID
	// File is nil when the input could not be loaded.
	File *source.File
	Bag  *diag.Bag
	// Cached is set when the diagnostics came from a cache.
	Cached bool
	Timing *observ.Report
}

// HasErrors reports whether the file has early errors or could not be read.
func (r *DiagnoseResult) HasErrors() bool {
	return r != nil && r.Bag != nil && r.Bag.HasErrors()
}

// DiagnoseFile loads path into fs and checks it.
func DiagnoseFile(ctx context.Context, fs *source.FileSet, path string, opts *DiagnoseOptions) (*DiagnoseResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	trace.ProgressFrom(ctx).Expect(1)
	return diagnoseLoaded(ctx, fs.Get(fileID), opts), nil
}

// DiagnoseSource checks content that did not come from disk (stdin, tests).
func DiagnoseSource(ctx context.Context, fs *source.FileSet, name string, content []byte, opts *DiagnoseOptions) (*DiagnoseResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	fileID := fs.AddVirtual(name, content)
	trace.ProgressFrom(ctx).Expect(1)
	return diagnoseLoaded(ctx, fs.Get(fileID), opts), nil
}

// validate rejects options that would fail for every file, so directory
// runs report them once instead of once per file.
func (opts *DiagnoseOptions) validate() error {
	if opts == nil {
		return errors.New("driver: nil options")
	}
	return opts.Check.Check(opts.Mode)
}

func diagnoseLoaded(ctx context.Context, file *source.File, opts *DiagnoseOptions) *DiagnoseResult {
	tracer := trace.FromContext(ctx)
	span := trace.BeginFile(tracer, trace.ParentID(ctx), file.Path)
	progress := trace.ProgressFrom(ctx)
	progress.Start(file.Path)
	defer progress.Finish()

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	res := &DiagnoseResult{
		Path:   file.Path,
		FileID: file.ID,
		File:   file,
		Bag:    diag.NewBag(opts.MaxDiagnostics),
	}

	key := opts.cacheKey(file.Hash)
	diags, cached := opts.lookup(key, timer)
	if !cached {
		diags = diagnoseContent(file, opts, timer, tracer, span.ID())
		opts.store(key, file, diags)
	}
	res.Cached = cached
	for _, d := range diags {
		if !res.Bag.Add(d) {
			break
		}
	}
	res.Bag.Sort()

	if timer != nil {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(res.Bag, timingPayload{
			Kind:    "file",
			Path:    file.Path,
			Cached:  cached,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}

	span.Diagnostics(res.Bag.Len()).Cached(cached).End("")
	return res
}

// diagnoseContent decodes and validates one file. Input problems become
// INP diagnostics so a directory run keeps going past a broken file.
func diagnoseContent(file *source.File, opts *DiagnoseOptions, timer *observ.Timer, tracer trace.Tracer, parent uint64) []diag.Diagnostic {
	var program *estree.Node
	err := opts.phase(timer, observ.PhaseDecode, func() error {
		var decodeErr error
		program, decodeErr = estree.Decode(bytes.NewReader(file.Content))
		return decodeErr
	})
	if err != nil {
		return []diag.Diagnostic{diag.NewError(diag.InpMalformed, source.Location{}, err.Error())}
	}

	var res *estcheck.Result
	err = opts.phase(timer, observ.PhaseValidate, func() error {
		checkOpts := opts.Check
		checkOpts.Tracer = tracer
		checkOpts.ParentSpan = parent
		var validateErr error
		res, validateErr = estcheck.Validate(program, opts.Mode, checkOpts)
		return validateErr
	})
	if err != nil {
		var shapeErr *estree.ShapeError
		if errors.As(err, &shapeErr) {
			return []diag.Diagnostic{diag.NewError(diag.InpShape, shapeErr.Loc, shapeErr.Error())}
		}
		return []diag.Diagnostic{diag.NewError(diag.InpOptions, source.Location{}, err.Error())}
	}
	return res.Diagnostics
}

func (opts *DiagnoseOptions) phase(timer *observ.Timer, name string, fn func() error) error {
	if opts.Observer != nil {
		opts.Observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	err := timer.Measure(name, fn)
	if opts.Observer != nil {
		opts.Observer(PhaseEvent{Name: name, Status: PhaseEnd, Err: err})
	}
	return err
}

// cacheKey: H(content || version || mode || options...).
func (opts *DiagnoseOptions) cacheKey(content uint64) cache.Digest {
	if opts.DiskCache == nil && opts.Memory == nil {
		return cache.Digest{}
	}
	parts := []string{
		version.Version,
		opts.Mode.String(),
		strconv.FormatBool(opts.Check.Strict),
		opts.Check.ClosureContext,
		strconv.FormatBool(opts.Check.FunctionExpressionAncestor),
	}
	for _, b := range opts.Check.Scope {
		dup := "-"
		if b.Duplicable != nil {
			dup = strconv.FormatBool(*b.Duplicable)
		}
		parts = append(parts, strings.Join([]string{b.Name, b.Kind, dup}, ":"))
	}
	return cache.Key(content, parts...)
}

func (opts *DiagnoseOptions) lookup(key cache.Digest, timer *observ.Timer) ([]diag.Diagnostic, bool) {
	if key.IsZero() {
		return nil, false
	}
	var (
		diags []diag.Diagnostic
		hit   bool
	)
	_ = opts.phase(timer, observ.PhaseCache, func() error {
		if d, _, ok := opts.Memory.Get(key); ok {
			diags, hit = d, true
			return nil
		}
		var payload cache.Payload
		ok, err := opts.DiskCache.Get(key, &payload)
		if err != nil || !ok {
			// повреждённая запись считается промахом
			return err
		}
		diags, hit = payload.Diagnostics, true
		return nil
	})
	return diags, hit
}

func (opts *DiagnoseOptions) store(key cache.Digest, file *source.File, diags []diag.Diagnostic) {
	if key.IsZero() {
		return
	}
	opts.Memory.Put(key, file.Path, diags)
	if opts.DiskCache != nil && file.Flags&source.FileVirtual == 0 {
		// ошибки записи игнорируются
		_ = opts.DiskCache.Put(key, &cache.Payload{
			Path:        file.Path,
			ContentHash: file.Hash,
			Mode:        opts.Mode.String(),
			Diagnostics: diags,
			CheckedAt:   time.Now(),
		})
	}
}
