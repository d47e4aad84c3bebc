package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fontspector/internal/checkapi"
	"fontspector/internal/config"
	"fontspector/internal/flags"
	"fontspector/internal/logging"
	"fontspector/internal/profiles"
	"fontspector/internal/profiles/googlefonts"
	"fontspector/internal/upstream"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// logLevelEnv overrides the -v/--quiet derived log level when set.
const logLevelEnv = "FONTSPECTOR_LOG_LEVEL"

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "fontspector",
	Short: "Quality-assurance checks for font binaries and sources",
	Long: `Fontspector runs profiles of quality-assurance checks against font files
and reports every problem it finds.

Examples:
	# Check a family with the default (universal) profile
	fontspector check fonts/*.ttf

	# Check a Google Fonts directory and write a JSON report
	fontspector check -p googlefonts --json report.json ofl/foo/

	# See what a profile contains
	fontspector checks list -p googlefonts

	# Print build info
	fontspector version`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&cfg.Output.Verbose, flags.FlagVerbose, "v", "Increase logging verbosity (repeatable: -v info, -vv debug)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func newLogger(c *config.Config) *slog.Logger {
	level := logging.LevelFromVerbosity(c.Output.Verbose, c.Output.Quiet)
	if v := os.Getenv(logLevelEnv); v != "" {
		level = logging.LevelFromString(v)
	}
	return logging.NewLogger(os.Stderr, level)
}

// newRegistry registers the built-in profiles. The upstream client is only
// created once a check actually asks GitHub something.
func newRegistry(logger *slog.Logger) (*checkapi.Registry, error) {
	reg := checkapi.NewRegistry()
	opts := profiles.Options{
		GoogleFonts: googlefonts.Options{
			Upstream: upstream.NewLazyClient(logger, ""),
		},
	}
	if err := profiles.RegisterCore(reg, opts); err != nil {
		return nil, fmt.Errorf("registering built-in profiles: %w", err)
	}
	return reg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
