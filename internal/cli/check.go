package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"fontspector/internal/checkapi"
	"fontspector/internal/config"
	"fontspector/internal/engine"
	"fontspector/internal/flags"
)

var (
	timeoutSeconds int
	listChecksOnly bool
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] INPUT...",
	Short: "Run a profile of checks against font files",
	Long: `Run every check of a profile against the given fonts and report the results.

Inputs are font binaries, sources, METADATA.pb and license files, or
directories. Directories are searched recursively; patterns listed in a
.fontspectorignore file at the directory root are skipped. Files are grouped
into one family per directory.

Configuration:
	--configuration reads a TOML or YAML document with per-check settings,
	explicit_checks, exclude_checks, source_map and status overrides.
	--profile accepts a built-in profile name or a path to a .toml profile.

Network:
	Some checks ask GitHub about the upstream font catalog. They authenticate
	with GITHUB_TOKEN, GH_TOKEN or the GitHub CLI (gh auth token) when
	available. --skip-network turns them into skips.

Exit codes:
	0 = no result reached --error-code-on
	1 = at least one result reached --error-code-on
	2 = the run could not be completed

Examples:
	fontspector check fonts/*.ttf
	fontspector check -p googlefonts --skip-network ofl/foo/
	fontspector check --json - -q fonts/Foo-Regular.ttf | jq .worst_status
	fontspector check --hotfix -c fstype fonts/Foo-Regular.ttf
`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && !listChecksOnly {
			_ = cmd.Help()
			return
		}
		cfg.Inputs = args
		cfg.Run.Timeout = time.Duration(timeoutSeconds) * time.Second

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		code := runCheck(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, nil)
		stop()
		if code != engine.ExitClean {
			os.Exit(code)
		}
	},
}

// runCheck validates c and runs it. A nil reg gets the built-in profiles.
func runCheck(ctx context.Context, stdout, stderr io.Writer, c *config.Config, reg *checkapi.Registry) int {
	if err := c.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return engine.ExitFatal
	}
	logger := newLogger(c)
	if reg == nil {
		var err error
		if reg, err = newRegistry(logger); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return engine.ExitFatal
		}
	}

	eng := engine.New(reg, logger, stdout, stderr)
	if listChecksOnly {
		profile, err := eng.ResolveProfile(c)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return engine.ExitFatal
		}
		if err := writeCheckList(stdout, reg, profile, false); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return engine.ExitFatal
		}
		return engine.ExitClean
	}
	return eng.Run(ctx, c)
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// MAINTAINER NOTE: flag names live in internal/flags; keep config.Config
	// field docs in sync when adding one here.

	// Profile selection
	checkCmd.Flags().StringVarP(&cfg.Profile.Name, flags.FlagProfile, "p", cfg.Profile.Name, "Profile name, or path to a .toml profile document")
	checkCmd.Flags().StringSliceVar(&cfg.Profile.Plugins, flags.FlagPlugins, nil, "Plugin shared objects to load (repeatable; comma-separated accepted)")
	checkCmd.Flags().StringVar(&cfg.Profile.Configuration, flags.FlagConfiguration, "", "User configuration file (.toml, .yaml or .yml)")
	checkCmd.Flags().StringArrayVarP(&cfg.Profile.CheckIDs, flags.FlagCheckID, "c", nil, "Only run checks whose ID contains this text (repeatable)")
	checkCmd.Flags().StringArrayVarP(&cfg.Profile.ExcludeCheckIDs, flags.FlagExcludeCheckID, "x", nil, "Skip checks whose ID contains this text (repeatable)")
	checkCmd.Flags().BoolVar(&listChecksOnly, flags.FlagListChecks, false, "List the profile's checks instead of running them")

	// Run
	checkCmd.Flags().IntVarP(&cfg.Run.Jobs, flags.FlagJobs, "j", cfg.Run.Jobs, "Checks to run at once (1 = sequential)")
	checkCmd.Flags().BoolVar(&cfg.Run.FullLists, flags.FlagFullLists, false, "Do not abbreviate long lists in messages")
	checkCmd.Flags().BoolVar(&cfg.Run.SkipNetwork, flags.FlagSkipNetwork, false, "Skip checks that need network access")
	checkCmd.Flags().IntVar(&timeoutSeconds, flags.FlagTimeout, int(checkapi.DefaultNetworkTimeout/time.Second), "Timeout in seconds for each network operation")
	checkCmd.Flags().StringVarP(&cfg.Run.ErrorCodeOn, flags.FlagErrorCodeOn, "e", cfg.Run.ErrorCodeOn, "Exit 1 when any result is at least this severe: INFO|PASS|WARN|FAIL|FATAL|ERROR")

	// Fix problems
	checkCmd.Flags().BoolVar(&cfg.Fix.Hotfix, flags.FlagHotfix, false, "Repair font binaries in place where a check knows how")
	checkCmd.Flags().BoolVar(&cfg.Fix.FixSources, flags.FlagFixSources, false, "Repair font sources named in the source map")
	checkCmd.Flags().StringSliceVar(&cfg.Fix.SourceMap, flags.FlagSourceMap, nil, "Binary to source mapping as binary=source (repeatable; comma-separated accepted)")

	// Output
	checkCmd.Flags().BoolVarP(&cfg.Output.Quiet, flags.FlagQuiet, "q", false, "Suppress terminal output and the progress bar")
	checkCmd.Flags().BoolVar(&cfg.Output.Succinct, flags.FlagSuccinct, false, "One line per reported check")
	checkCmd.Flags().StringVarP(&cfg.Output.LogLevel, flags.FlagLogLevel, "l", cfg.Output.LogLevel, "Hide checks whose worst status is below this in the terminal")
	checkCmd.Flags().StringVar(&cfg.Output.JSON, flags.FlagJSON, "", "Write a JSON report to this path ('-' for stdout)")
	checkCmd.Flags().StringVar(&cfg.Output.GHMarkdown, flags.FlagGHMarkdown, "", "Write a GitHub-Markdown report to this path ('-' for stdout)")
}
