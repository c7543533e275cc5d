package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"phpsniff/internal/diag"
	"phpsniff/internal/lint"
	"phpsniff/internal/observ"
	"phpsniff/internal/sniff/finalclass"
	"phpsniff/internal/source"
	"phpsniff/internal/trace"
)

// RulesetFactory builds a fresh ruleset. Sniff instances keep per-call
// state, so every worker needs its own.
type RulesetFactory func() (*lint.Ruleset, error)

// DefaultRuleset registers the final-class sniff with default options.
func DefaultRuleset() (*lint.Ruleset, error) {
	rs := lint.NewRuleset()
	rs.Register(finalclass.New(finalclass.Options{}))
	return rs, nil
}

type CheckOptions struct {
	MaxDiagnostics int
	// Jobs <= 0 means GOMAXPROCS.
	Jobs     int
	Discover DiscoverOptions
	// NewRuleset defaults to DefaultRuleset.
	NewRuleset RulesetFactory
	// Cache may be nil.
	Cache    *DiskCache
	Progress ProgressSink
	// Timings appends an ObsTimings diagnostic to the result.
	Timings bool
	// BaseDir is used for relative path rendering.
	BaseDir string
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	Path        string
	FileID      source.FileID
	Diagnostics []*diag.Diagnostic
	Errors      int
	Warnings    int
	Fixable     int
	Cached      bool
	// Loaded is false when the file could not be read; FileID is then invalid.
	Loaded bool
}

// CheckResult collects the per-file results of one pass in path order.
type CheckResult struct {
	FileSet *source.FileSet
	Files   []FileResult
	Timing  *observ.Report
	// Timings is set when CheckOptions.Timings was requested.
	Timings *diag.Diagnostic
}

// Diagnostics returns every diagnostic of the pass, file by file.
func (r *CheckResult) Diagnostics() []*diag.Diagnostic {
	if r == nil {
		return nil
	}
	var out []*diag.Diagnostic
	for i := range r.Files {
		out = append(out, r.Files[i].Diagnostics...)
	}
	if r.Timings != nil {
		out = append(out, r.Timings)
	}
	return out
}

// ErrorCount sums errors across files.
func (r *CheckResult) ErrorCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for i := range r.Files {
		n += r.Files[i].Errors
	}
	return n
}

// WarningCount sums warnings across files.
func (r *CheckResult) WarningCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for i := range r.Files {
		n += r.Files[i].Warnings
	}
	return n
}

// FixableCount sums fixable reports across files.
func (r *CheckResult) FixableCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for i := range r.Files {
		n += r.Files[i].Fixable
	}
	return n
}

// Check checks a single file or directory.
func Check(ctx context.Context, path string, opts CheckOptions) (*CheckResult, error) {
	return CheckPaths(ctx, []string{path}, opts)
}

// CheckDir checks every matching file below dir; paths render relative to dir.
func CheckDir(ctx context.Context, dir string, opts CheckOptions) (*CheckResult, error) {
	if opts.BaseDir == "" {
		opts.BaseDir = dir
	}
	return CheckPaths(ctx, []string{dir}, opts)
}

// CheckPaths discovers files under paths and checks them in parallel.
// Unreadable files become IOLoadFileError diagnostics; a sniff failure
// becomes a SniffInternalError diagnostic for that file. Only discovery
// errors and cancellation are returned as errors.
func CheckPaths(ctx context.Context, paths []string, opts CheckOptions) (*CheckResult, error) {
	files, err := Discover(paths, opts.Discover)
	if err != nil {
		return nil, err
	}
	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	return checkFiles(ctx, fileSet, files, opts)
}

// CheckSource checks in-memory content registered under name as a virtual
// file. Fixes for it can only be applied in dry-run mode.
func CheckSource(ctx context.Context, name string, content []byte, opts CheckOptions) (*CheckResult, error) {
	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	id := fileSet.AddVirtual(name, content)
	timer := observ.NewTimer()
	res := runFile(ctx, fileSet, id, name, opts, timer)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return finish(fileSet, []FileResult{res}, opts, timer, name), nil
}

func checkFiles(ctx context.Context, fileSet *source.FileSet, files []string, opts CheckOptions) (*CheckResult, error) {
	ctx, pass := trace.Start(ctx, trace.ScopePass, "check")
	pass.WithExtra("files", strconv.Itoa(len(files)))
	defer pass.End("")

	timer := observ.NewTimer()
	if len(files) == 0 {
		return finish(fileSet, nil, opts, timer, opts.BaseDir), nil
	}

	for _, path := range files {
		emit(opts.Progress, path, StageLoad, StatusQueued, nil, 0)
	}

	// Preload sequentially so FileIDs follow path order and the FileSet is
	// read-only while workers run.
	loadStart := time.Now()
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error)
	for _, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = id
	}
	timer.Add("load", time.Since(loadStart))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// each goroutine owns results[i]
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loadErr, failed := loadErrors[path]; failed {
				results[i] = loadFailure(path, loadErr)
				emit(opts.Progress, path, StageLoad, StatusError, loadErr, 0)
				return nil
			}
			results[i] = runFile(gctx, fileSet, fileIDs[path], path, opts, timer)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return finish(fileSet, results, opts, timer, opts.BaseDir), nil
}

func finish(fileSet *source.FileSet, results []FileResult, opts CheckOptions, timer *observ.Timer, path string) *CheckResult {
	report := timer.Report()
	res := &CheckResult{
		FileSet: fileSet,
		Files:   results,
		Timing:  &report,
	}
	if opts.Timings {
		cached := 0
		for i := range results {
			if results[i].Cached {
				cached++
			}
		}
		res.Timings = timingDiagnostic(timingPayload{
			Kind:    "check",
			Path:    path,
			Files:   len(results),
			Cached:  cached,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
	return res
}

func loadFailure(path string, err error) FileResult {
	return FileResult{
		Path: path,
		Diagnostics: []*diag.Diagnostic{{
			Severity: diag.SevError,
			Code:     diag.IOLoadFileError,
			Message:  "failed to load file: " + err.Error(),
			Primary:  source.Span{},
		}},
		Errors: 1,
	}
}

// runFile checks one loaded file, consulting the cache first.
func runFile(ctx context.Context, fileSet *source.FileSet, id source.FileID, path string, opts CheckOptions, timer *observ.Timer) FileResult {
	file := fileSet.Get(id)
	res := FileResult{Path: path, FileID: id, Loaded: true}

	newRuleset := opts.NewRuleset
	if newRuleset == nil {
		newRuleset = DefaultRuleset
	}
	rs, err := newRuleset()
	if err != nil {
		res.Diagnostics = []*diag.Diagnostic{internalError(file, fmt.Errorf("build ruleset: %w", err))}
		res.Errors = 1
		emit(opts.Progress, path, StageSniff, StatusError, err, 0)
		return res
	}

	fingerprint := rs.Fingerprint()
	key := resultKey(file.Hash, fingerprint, opts.MaxDiagnostics)
	if opts.Cache != nil {
		start := time.Now()
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		timer.Add("cache", time.Since(start))
		if err == nil && hit && payload.Fingerprint == fingerprint {
			res.Diagnostics = payload.restore(id)
			res.Cached = true
			tally(&res)
			emit(opts.Progress, path, StageCache, StatusDone, nil, time.Since(start))
			return res
		}
	}

	emit(opts.Progress, path, StageLex, StatusWorking, nil, 0)
	start := time.Now()
	lexBag := diag.NewBag(opts.MaxDiagnostics)
	tokens := lex(file, lexBag)
	timer.Add("lex", time.Since(start))

	lf := rs.NewFile(file, tokens, opts.MaxDiagnostics)
	for _, d := range lexBag.Items() {
		lf.Report(d)
	}

	emit(opts.Progress, path, StageSniff, StatusWorking, nil, 0)
	start = time.Now()
	procErr := rs.Process(ctx, lf)
	timer.Add("sniff", time.Since(start))

	if procErr != nil && (errors.Is(procErr, context.Canceled) || errors.Is(procErr, context.DeadlineExceeded)) {
		emit(opts.Progress, path, StageSniff, StatusError, procErr, 0)
		return res
	}
	if procErr != nil {
		lf.Report(internalError(file, procErr))
	}

	res.Diagnostics = lf.Diagnostics()
	tally(&res)

	// an aborted file is not cached; the next run reports the failure again
	if opts.Cache != nil && procErr == nil {
		if err := opts.Cache.Put(key, toDiskPayload(path, fingerprint, res.Diagnostics)); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache-put-failed", err.Error())
		}
	}

	status := StatusDone
	if procErr != nil {
		status = StatusError
	}
	emit(opts.Progress, path, StageSniff, status, procErr, time.Since(start))
	return res
}

func internalError(file *source.File, err error) *diag.Diagnostic {
	return &diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.SniffInternalError,
		Message:  err.Error(),
		Primary:  source.Span{File: file.ID},
	}
}

func tally(res *FileResult) {
	res.Errors, res.Warnings, res.Fixable = 0, 0, 0
	for _, d := range res.Diagnostics {
		switch d.Severity {
		case diag.SevError:
			res.Errors++
		case diag.SevWarning:
			res.Warnings++
		}
		if d.Fixable() {
			res.Fixable++
		}
	}
}
