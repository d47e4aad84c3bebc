package flags

// Package flags defines canonical CLI flag names shared across the CLI and tests.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVarP(&cfg.Profile.Name, flags.FlagProfile, "p", "universal", "...")
//	arg := "--" + flags.FlagProfile
const (
	// Profile selection
	FlagProfile        = "profile"
	FlagPlugins        = "plugins"
	FlagConfiguration  = "configuration"
	FlagCheckID        = "checkid"
	FlagExcludeCheckID = "exclude-checkid"
	FlagListChecks     = "list-checks"

	// Run
	FlagJobs        = "jobs"
	FlagFullLists   = "full-lists"
	FlagSkipNetwork = "skip-network"
	FlagTimeout     = "timeout"
	FlagErrorCodeOn = "error-code-on"

	// Fix problems
	FlagHotfix     = "hotfix"
	FlagFixSources = "fix-sources"
	FlagSourceMap  = "source-map"

	// Output
	FlagQuiet      = "quiet"
	FlagSuccinct   = "succinct"
	FlagVerbose    = "verbose"
	FlagLogLevel   = "loglevel"
	FlagJSON       = "json"
	FlagGHMarkdown = "ghmarkdown"

	// Hotfix command
	FlagOutput = "output"
)
