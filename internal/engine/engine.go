package engine

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"fontspector/internal/checkapi"
	"fontspector/internal/config"
	"fontspector/internal/output"
	"fontspector/internal/profiles"
)

// Exit codes.
const (
	ExitClean        = 0
	ExitChecksFailed = 1
	ExitFatal        = 2
)

// slowestChecks is how many checks verbose runs report timings for.
const slowestChecks = 10

func exitCodeForRun(fatal bool, worst, threshold checkapi.StatusCode) int {
	if fatal {
		return ExitFatal
	}
	if worst >= threshold {
		return ExitChecksFailed
	}
	return ExitClean
}

type Engine struct {
	Registry *checkapi.Registry
	Logger   *slog.Logger
	Stdout   io.Writer
	Stderr   io.Writer
}

// New returns an engine over reg. Nil writers default to the process streams.
func New(reg *checkapi.Registry, logger *slog.Logger, stdout, stderr io.Writer) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Engine{Registry: reg, Logger: logger, Stdout: stdout, Stderr: stderr}
}

// LoadPlugins registers every plugin it can. Failures are logged, not fatal.
func (e *Engine) LoadPlugins(paths []string) {
	for _, p := range paths {
		if err := e.Registry.LoadPlugin(p); err != nil {
			e.Logger.Error("could not load plugin", "path", p, "error", err)
			continue
		}
		e.Logger.Debug("loaded plugin", "path", p)
	}
}

// ResolveProfile loads the configured plugins and returns the selected
// profile. A name ending in .toml is read as a profile document first.
func (e *Engine) ResolveProfile(cfg *config.Config) (*checkapi.Profile, error) {
	e.LoadPlugins(cfg.Profile.Plugins)

	name := cfg.Profile.Name
	if profiles.IsProfileFile(name) {
		var err error
		if name, err = profiles.RegisterProfileFile(e.Registry, name); err != nil {
			return nil, err
		}
	}
	p, ok := e.Registry.Profile(name)
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(e.Registry.ProfileNames(), ", "))
	}
	return p, nil
}

func (e *Engine) setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()
	add := func(r output.Reporter, err error) error {
		if err == nil {
			err = outMgr.AddReporter(r)
		}
		if err != nil {
			_ = outMgr.Close()
		}
		return err
	}

	if !cfg.Output.Quiet && cfg.StdoutReports() == 0 {
		if err := add(output.NewTerminalReporter(e.Stdout), nil); err != nil {
			return nil, err
		}
	}
	if cfg.Output.JSON != "" {
		if err := add(output.NewJSONReporter(cfg.Output.JSON, e.Stdout)); err != nil {
			return nil, err
		}
	}
	if cfg.Output.GHMarkdown != "" {
		if err := add(output.NewMarkdownReporter(cfg.Output.GHMarkdown, e.Stdout)); err != nil {
			return nil, err
		}
	}
	return outMgr, nil
}

func (e *Engine) fail(doing string, err error) int {
	fmt.Fprintf(e.Stderr, "Error %s: %v\n", doing, err)
	return exitCodeForRun(true, checkapi.StatusPass, checkapi.StatusPass)
}

// prepare resolves everything a run needs before the first check executes.
func (e *Engine) prepare(cfg *config.Config) (*Plan, map[string]string, error) {
	profile, err := e.ResolveProfile(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving profile: %w", err)
	}
	uc, err := config.LoadUserConfiguration(cfg.Profile.Configuration)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	includes, excludes, sourceMap, err := uc.Merge(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	files, err := ExpandInputs(cfg.Inputs)
	if err != nil {
		return nil, nil, fmt.Errorf("reading inputs: %w", err)
	}
	collections, err := GroupInputs(files)
	if err != nil {
		return nil, nil, fmt.Errorf("reading inputs: %w", err)
	}

	base := checkapi.NewContext()
	base.SkipNetwork = cfg.Run.SkipNetwork
	base.NetworkTimeout = cfg.Run.Timeout
	base.FullLists = cfg.Run.FullLists
	base.Overrides = uc.Overrides

	plan, err := BuildPlan(e.Registry, profile, collections, PlanOptions{
		Includes:       includes,
		Excludes:       excludes,
		Base:           base,
		PerCheckConfig: uc.PerCheckConfig,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("planning: %w", err)
	}
	for _, u := range plan.Unresolved {
		e.Logger.Warn("profile lists an unregistered check", "check", u.CheckID, "section", u.Section)
	}
	return plan, sourceMap, nil
}

// Run executes a complete check run and returns the process exit code.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	start := time.Now()
	plan, sourceMap, err := e.prepare(cfg)
	if err != nil {
		return e.fail("preparing run", err)
	}

	toStdout := cfg.StdoutReports() > 0
	chatty := !toStdout && !cfg.Output.Quiet
	if chatty {
		fmt.Fprintln(e.Stdout, plan.Describe())
	}

	var progressOut io.Writer
	if !cfg.Output.Quiet {
		progressOut = e.Stderr
	}
	sched, err := NewScheduler(cfg.Run.Jobs, progressOut)
	if err != nil {
		return e.fail("starting scheduler", err)
	}
	results, runErr := sched.Execute(ctx, plan.Items)
	if runErr != nil {
		e.Logger.Error("run interrupted; reporting partial results", "error", runErr)
	}
	results = append(results, plan.UnresolvedResults()...)
	rr := checkapi.NewRunResults(results)

	fixOpts := FixOptions{Hotfix: cfg.Fix.Hotfix, FixSources: cfg.Fix.FixSources, SourceMap: sourceMap}
	if fixOpts.enabled() {
		if err := NewFixer(e.Registry, e.Logger).Fix(rr, fixOpts); err != nil {
			e.Logger.Error("some fixes could not be saved", "error", err)
		}
	}

	outMgr, err := e.setupOutputManager(cfg)
	if err != nil {
		return e.fail("creating reporters", err)
	}
	reportErr := outMgr.Report(rr, cfg, e.Registry)
	if err := outMgr.Close(); err != nil && reportErr == nil {
		reportErr = err
	}
	if reportErr != nil {
		fmt.Fprintf(e.Stderr, "Error writing reports: %v\n", reportErr)
	}

	if chatty {
		fmt.Fprintf(e.Stdout, "Ran %d checks in %.3fs\n", rr.Len(), time.Since(start).Seconds())
		_ = output.WriteSummary(e.Stdout, rr.Summary())
	}
	e.logSlowest(ctx, rr)

	return exitCodeForRun(runErr != nil || reportErr != nil, rr.WorstStatus(), cfg.ErrorThreshold())
}

func (e *Engine) logSlowest(ctx context.Context, rr *checkapi.RunResults) {
	if !e.Logger.Enabled(ctx, slog.LevelInfo) || rr.Len() == 0 {
		return
	}
	byTime := slices.Clone(rr.Results)
	slices.SortStableFunc(byTime, func(a, b *checkapi.CheckResult) int { return cmp.Compare(b.Time, a.Time) })
	for _, r := range byTime[:min(slowestChecks, len(byTime))] {
		e.Logger.Info("slow check", "check", r.CheckID, "file", r.Filename, "duration", r.Time.Truncate(time.Microsecond))
	}
}
