package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"fontspector/internal/checkapi"
)

// Stdout is the reporter destination meaning "write to standard output".
const Stdout = "-"

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep these in sync:
	// - CLI flags in internal/cli/check.go
	// - flag names in internal/flags
	Inputs  []string
	Profile Profile
	Run     Run
	Fix     Fix
	Output  Output
}

type Profile struct {
	// Name is a registered profile name, or a path ending in .toml (see --profile).
	Name string

	// Plugins are shared objects to load before resolving the profile (see --plugins).
	// Values may be provided as repeated flags and/or comma-separated lists.
	Plugins []string

	// Configuration is a user configuration document, TOML or YAML (see --configuration).
	Configuration string

	// CheckIDs selects checks whose ID contains any of these substrings (see --checkid).
	CheckIDs []string

	// ExcludeCheckIDs drops checks whose ID contains any of these substrings (see --exclude-checkid).
	ExcludeCheckIDs []string
}

type Run struct {
	// Jobs bounds how many checks run at once (see --jobs). 1 runs sequentially.
	Jobs int

	// FullLists disables list abbreviation in messages (see --full-lists).
	FullLists bool

	// SkipNetwork makes network-dependent checks skip (see --skip-network).
	SkipNetwork bool

	// Timeout bounds each network operation (see --timeout).
	Timeout time.Duration

	// ErrorCodeOn is the severity from which the process exits 1 (see --error-code-on).
	ErrorCodeOn string
}

type Fix struct {
	// Hotfix repairs binaries in place (see --hotfix).
	Hotfix bool

	// FixSources repairs the sources listed in the source map (see --fix-sources).
	FixSources bool

	// SourceMap entries are binary=source (see --source-map).
	// Values may be provided as repeated flags and/or comma-separated lists.
	SourceMap []string
}

type Output struct {
	// Quiet suppresses the terminal reporter and the progress bar (see --quiet).
	Quiet bool

	// Succinct uses the compact terminal layout (see --succinct).
	Succinct bool

	// Verbose raises the log level; repeatable (see -v).
	Verbose int

	// LogLevel hides checks whose worst status is below it in the terminal (see --loglevel).
	LogLevel string

	// JSON writes a JSON report to this path, or stdout when "-" (see --json).
	JSON string

	// GHMarkdown writes a GitHub-Markdown report to this path, or stdout when "-" (see --ghmarkdown).
	GHMarkdown string
}

func New() *Config {
	return &Config{
		Profile: Profile{
			Name: "universal",
		},
		Run: Run{
			Jobs:        runtime.NumCPU(),
			Timeout:     checkapi.DefaultNetworkTimeout,
			ErrorCodeOn: checkapi.StatusFail.String(),
		},
		Output: Output{
			LogLevel: checkapi.StatusWarn.String(),
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Profile.Plugins = splitCommaList(c.Profile.Plugins)
	c.Fix.SourceMap = splitCommaList(c.Fix.SourceMap)

	c.Profile.Name = strings.TrimSpace(c.Profile.Name)
	if c.Profile.Name == "" {
		return errors.New("--profile must not be empty")
	}

	if c.Run.Jobs <= 0 {
		return errors.New("--jobs must be >= 1")
	}
	if c.Run.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	c.Run.ErrorCodeOn = strings.ToUpper(strings.TrimSpace(c.Run.ErrorCodeOn))
	if c.Run.ErrorCodeOn == "" {
		c.Run.ErrorCodeOn = checkapi.StatusFail.String()
	}
	if _, err := checkapi.ParseStatusCode(c.Run.ErrorCodeOn); err != nil {
		return fmt.Errorf("unsupported --error-code-on: %w", err)
	}

	c.Output.LogLevel = strings.ToUpper(strings.TrimSpace(c.Output.LogLevel))
	if c.Output.LogLevel == "" {
		c.Output.LogLevel = checkapi.StatusWarn.String()
	}
	if _, err := checkapi.ParseStatusCode(c.Output.LogLevel); err != nil {
		return fmt.Errorf("unsupported --loglevel: %w", err)
	}

	if c.Output.Verbose < 0 {
		return errors.New("verbosity must be >= 0")
	}
	if c.StdoutReports() > 1 {
		return errors.New("only one of --json or --ghmarkdown can be stdout")
	}

	if len(c.Fix.SourceMap) > 0 {
		if _, err := ParseSourceMap(c.Fix.SourceMap); err != nil {
			return err
		}
	}
	return nil
}

// ErrorThreshold is the parsed --error-code-on value. Call after Validate.
func (c *Config) ErrorThreshold() checkapi.StatusCode {
	code, err := checkapi.ParseStatusCode(c.Run.ErrorCodeOn)
	if err != nil {
		return checkapi.StatusFail
	}
	return code
}

// ReportThreshold is the parsed --loglevel value. Call after Validate.
func (c *Config) ReportThreshold() checkapi.StatusCode {
	code, err := checkapi.ParseStatusCode(c.Output.LogLevel)
	if err != nil {
		return checkapi.StatusWarn
	}
	return code
}

// StdoutReports counts reporters writing to standard output.
func (c *Config) StdoutReports() int {
	n := 0
	for _, dest := range []string{c.Output.JSON, c.Output.GHMarkdown} {
		if dest == Stdout {
			n++
		}
	}
	return n
}

// ParseSourceMap parses values of the form "binary=source".
// The separator may also be ':' for compatibility with older command lines.
func ParseSourceMap(values []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, raw := range splitCommaList(values) {
		bin, src, ok := strings.Cut(raw, "=")
		if !ok {
			bin, src, ok = strings.Cut(raw, ":")
		}
		if !ok {
			return nil, fmt.Errorf("invalid --source-map entry %q: expected binary=source", raw)
		}
		bin = strings.TrimSpace(bin)
		src = strings.TrimSpace(src)
		if bin == "" || src == "" {
			return nil, fmt.Errorf("invalid --source-map entry %q: expected non-empty binary and source", raw)
		}
		out[bin] = src
	}
	return out, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
