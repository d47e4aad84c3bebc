package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fontspector/internal/checkapi"
	"fontspector/internal/engine"
	"fontspector/internal/flags"
)

var listAsJSON bool

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "Inspect the checks of a profile",
	Long: `Inspect the checks a profile runs.

Examples:
  fontspector checks list
  fontspector checks list -p googlefonts --json
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var checksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the checks of a profile, section by section",
	Long: `List the checks of a profile in execution order.

Output:
  One Markdown table per section:
    ## Section name
    |Check ID|Title|
    |--------|-----|
    |opentype/unitsperem|Checking unitsPerEm value is reasonable.|

  With --json, an object mapping each section to [{"id", "title"}].
  Sections without checks are omitted.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cfg)
		reg, err := newRegistry(logger)
		if err != nil {
			return err
		}
		profile, err := engine.New(reg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr()).ResolveProfile(cfg)
		if err != nil {
			return err
		}
		return writeCheckList(cmd.OutOrStdout(), reg, profile, listAsJSON)
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect the registered profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cfg)
		reg, err := newRegistry(logger)
		if err != nil {
			return err
		}
		engine.New(reg, logger, nil, nil).LoadPlugins(cfg.Profile.Plugins)
		writeProfileList(cmd.OutOrStdout(), reg)
		return nil
	},
}

type listedCheck struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// writeCheckList prints profile's sections in order. Unregistered IDs are
// listed with an empty title.
func writeCheckList(w io.Writer, reg *checkapi.Registry, profile *checkapi.Profile, asJSON bool) error {
	if asJSON {
		doc := make(map[string][]listedCheck)
		for _, s := range profile.Sections {
			if len(s.CheckIDs) == 0 {
				continue
			}
			doc[s.Name] = listChecks(reg, s.CheckIDs)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	bold := color.New(color.Bold)
	for _, s := range profile.Sections {
		if len(s.CheckIDs) == 0 {
			continue
		}
		bold.Fprintf(w, "## %s\n", s.Name)
		fmt.Fprintln(w, "|Check ID|Title|")
		fmt.Fprintln(w, "|--------|-----|")
		for _, c := range listChecks(reg, s.CheckIDs) {
			fmt.Fprintf(w, "|%s|%s|\n", c.ID, c.Title)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func listChecks(reg *checkapi.Registry, ids []string) []listedCheck {
	out := make([]listedCheck, 0, len(ids))
	for _, id := range ids {
		c := listedCheck{ID: id}
		if check, ok := reg.Check(id); ok {
			c.Title = check.Title
		}
		out = append(out, c)
	}
	return out
}

func writeProfileList(w io.Writer, reg *checkapi.Registry) {
	for _, name := range reg.ProfileNames() {
		p, _ := reg.Profile(name)
		fmt.Fprintf(w, "%s (%d checks)\n", name, len(p.CheckIDs()))
	}
}

func init() {
	rootCmd.AddCommand(checksCmd)
	checksCmd.AddCommand(checksListCmd)
	checksListCmd.Flags().StringVarP(&cfg.Profile.Name, flags.FlagProfile, "p", cfg.Profile.Name, "Profile name, or path to a .toml profile document")
	checksListCmd.Flags().StringSliceVar(&cfg.Profile.Plugins, flags.FlagPlugins, nil, "Plugin shared objects to load (repeatable; comma-separated accepted)")
	checksListCmd.Flags().BoolVar(&listAsJSON, flags.FlagJSON, false, "Print JSON instead of Markdown tables")

	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesListCmd.Flags().StringSliceVar(&cfg.Profile.Plugins, flags.FlagPlugins, nil, "Plugin shared objects to load (repeatable; comma-separated accepted)")
}
