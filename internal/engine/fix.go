package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"fontspector/internal/checkapi"
)

type FixOptions struct {
	Hotfix     bool
	FixSources bool
	// SourceMap maps a binary path (or its basename) to its source path.
	SourceMap map[string]string
}

func (o FixOptions) enabled() bool { return o.Hotfix || o.FixSources }

type fixJob struct {
	hotfix    checkapi.HotfixFunc
	sourceFix checkapi.SourceFixFunc
	result    *checkapi.CheckResult
}

// Fixer routes results of at least WARN to the hotfix and source-fix
// functions of their checks.
type Fixer struct {
	registry *checkapi.Registry
	logger   *slog.Logger
}

func NewFixer(reg *checkapi.Registry, logger *slog.Logger) *Fixer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fixer{registry: reg, logger: logger}
}

// Fix rereads each affected binary from disk, applies the fixes in result
// order and saves each modified file once. Fix outcomes are recorded on the
// results; when both a hotfix and a source fix run for one result, the
// source fix outcome is kept. A source that fails to load is recorded as a
// fix error on the results that wanted it; hotfixes on that binary still run.
// The returned error joins load and save failures.
func (f *Fixer) Fix(results *checkapi.RunResults, opts FixOptions) error {
	if results == nil || !opts.enabled() {
		return nil
	}

	var files []string
	jobs := make(map[string][]fixJob)
	for _, r := range results.Results {
		if r.WorstStatus() < checkapi.StatusWarn || r.Filename == "" {
			continue
		}
		check, ok := f.registry.Check(r.CheckID)
		if !ok {
			f.logger.Warn("check vanished from the registry", "check", r.CheckID)
			continue
		}
		job := fixJob{result: r}
		if opts.Hotfix {
			job.hotfix = check.Hotfix
		}
		if opts.FixSources {
			job.sourceFix = check.FixSource
		}
		if job.hotfix == nil && job.sourceFix == nil {
			continue
		}
		if _, ok := jobs[r.Filename]; !ok {
			files = append(files, r.Filename)
		}
		jobs[r.Filename] = append(jobs[r.Filename], job)
	}

	var errs []error
	for _, file := range files {
		if err := f.fixFile(file, jobs[file], opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fixer) fixFile(file string, jobs []fixJob, opts FixOptions) error {
	testable, err := checkapi.NewTestable(file)
	if err != nil {
		for _, j := range jobs {
			j.result.HotfixResult = checkapi.FixError(err)
		}
		return fmt.Errorf("load %s for fixing: %w", file, err)
	}

	var source *checkapi.SourceFile
	var sourceErr error
	if opts.FixSources {
		source, err = f.findSource(file, opts.SourceMap)
		if err != nil {
			f.logger.Error("cannot fix sources; applying hotfixes only", "file", file, "error", err)
			sourceErr = err
		}
	}

	var binaryModified, sourceModified bool
	for _, j := range jobs {
		if j.hotfix != nil {
			f.logger.Info("hotfixing", "file", file, "check", j.result.CheckID)
			changed, err := j.hotfix(testable)
			j.result.HotfixResult = fixOutcome(err)
			binaryModified = binaryModified || (err == nil && changed)
		}
		switch {
		case j.sourceFix != nil && sourceErr != nil:
			j.result.HotfixResult = checkapi.FixError(sourceErr)
		case j.sourceFix != nil && source != nil:
			f.logger.Info("fixing source", "source", source.Filename(), "check", j.result.CheckID)
			changed, err := j.sourceFix(source)
			j.result.HotfixResult = fixOutcome(err)
			sourceModified = sourceModified || (err == nil && changed)
		}
	}

	errs := []error{sourceErr}
	if binaryModified {
		if err := testable.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	if sourceModified {
		if err := source.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func fixOutcome(err error) *checkapi.FixResult {
	if err != nil {
		return checkapi.FixError(err)
	}
	return checkapi.Fixed()
}

// findSource returns nil without error when the binary has no source map entry.
func (f *Fixer) findSource(file string, sourceMap map[string]string) (*checkapi.SourceFile, error) {
	path, ok := sourceMap[file]
	if !ok {
		path, ok = sourceMap[filepath.Base(file)]
	}
	if !ok {
		f.logger.Warn("no source file in source map; cannot fix sources", "file", file,
			"hint", "pass --source-map binary.ttf=source.glyphs or set source_map in the configuration file")
		return nil, nil
	}
	source, err := checkapi.LoadSourceFile(path)
	if err != nil {
		return nil, fmt.Errorf("load source %s for %s: %w", path, file, err)
	}
	return source, nil
}

// HotfixOutcome is what one check's hotfix did in ApplyHotfixes.
type HotfixOutcome struct {
	CheckID string
	Changed bool
	Err     error
}

// ApplyHotfixes runs the hotfixes of checkIDs, in order, against the font at
// path without running the checks first. The font is written to out (or back
// to path when out is empty) if any hotfix changed it.
func ApplyHotfixes(reg *checkapi.Registry, path string, checkIDs []string, out string) ([]HotfixOutcome, error) {
	testable, err := checkapi.NewTestable(path)
	if err != nil {
		return nil, err
	}

	var (
		outcomes []HotfixOutcome
		modified bool
	)
	for _, id := range checkIDs {
		check, ok := reg.Check(id)
		if !ok {
			return outcomes, fmt.Errorf("unknown check %q", id)
		}
		if check.Hotfix == nil {
			continue
		}
		changed, err := check.Hotfix(testable)
		outcomes = append(outcomes, HotfixOutcome{CheckID: id, Changed: err == nil && changed, Err: err})
		modified = modified || (err == nil && changed)
	}

	if !modified {
		return outcomes, nil
	}
	if out == "" {
		out = path
	}
	return outcomes, testable.SaveAs(out)
}
