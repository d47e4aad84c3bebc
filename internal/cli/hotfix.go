package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fontspector/internal/checkapi"
	"fontspector/internal/engine"
	"fontspector/internal/flags"
)

var (
	hotfixCheckIDs []string
	hotfixProfile  string
	hotfixOutput   string
)

var hotfixCmd = &cobra.Command{
	Use:   "hotfix FONT",
	Short: "Apply check hotfixes to a font without running the checks",
	Long: `Apply the hotfixes of the named checks to one font.

Checks are named with -c (repeatable) or taken from a whole profile with -p.
The font is rewritten in place unless -o names another file. Hotfixes that
find nothing to change leave the font untouched.

Examples:
  fontspector hotfix -c googlefonts/fstype Foo-Regular.ttf
  fontspector hotfix -p googlefonts -o Foo-Regular.fixed.ttf Foo-Regular.ttf
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cfg)
		reg, err := newRegistry(logger)
		if err != nil {
			return err
		}
		return runHotfix(cmd.OutOrStdout(), reg, args[0], hotfixCheckIDs, hotfixProfile, hotfixOutput)
	},
}

func runHotfix(w io.Writer, reg *checkapi.Registry, font string, ids []string, profileName, out string) error {
	if profileName != "" {
		p, ok := reg.Profile(profileName)
		if !ok {
			return fmt.Errorf("unknown profile %q", profileName)
		}
		ids = append(ids, p.CheckIDs()...)
	}
	if len(ids) == 0 {
		return errors.New("name checks with --checkid or a --profile")
	}

	outcomes, err := engine.ApplyHotfixes(reg, font, ids, out)
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			fmt.Fprintf(w, "%s: %s\n", o.CheckID, o.Err)
		case o.Changed:
			fmt.Fprintf(w, "%s: fixed\n", o.CheckID)
		default:
			fmt.Fprintf(w, "%s: nothing to fix\n", o.CheckID)
		}
	}
	return err
}

func init() {
	rootCmd.AddCommand(hotfixCmd)
	hotfixCmd.Flags().StringArrayVarP(&hotfixCheckIDs, flags.FlagCheckID, "c", nil, "Check whose hotfix to apply (repeatable)")
	hotfixCmd.Flags().StringVarP(&hotfixProfile, flags.FlagProfile, "p", "", "Apply the hotfixes of every check in this profile")
	hotfixCmd.Flags().StringVarP(&hotfixOutput, flags.FlagOutput, "o", "", "Write the fixed font here instead of overwriting FONT")
}
