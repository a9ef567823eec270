package cli

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	pkgio "github.com/octavate/labelgraph/pkg/io"
)

// inspectCommand creates the inspect command for browsing skipped entries.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain   bool
		noCache bool
		run     string
	)

	cmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "Browse malformed entries interactively",
		Long: `Convert the input and browse the entries that had to be skipped.

When stdout is not a terminal, or with --plain, the entries are printed in
the malformed-entry log format instead. With --run, the entries of a run
saved by "publish --mongo" are shown ("latest" or a run id).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.resultFor(cmd.Context(), args, run, noCache)
			if err != nil {
				return err
			}

			if plain || !isatty.IsTerminal(os.Stdout.Fd()) {
				return pkgio.WriteMalformed(cmd.OutOrStdout(), res.Malformed)
			}
			if len(res.Malformed) == 0 {
				printSuccess("No malformed entries")
				return nil
			}

			p := tea.NewProgram(NewMalformedListModel(res.Malformed), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print entries instead of opening the browser")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the conversion cache")
	cmd.Flags().StringVar(&run, "run", "", "inspect a stored run instead of converting (id or \"latest\")")
	return cmd
}
