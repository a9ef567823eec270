package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/pipeline"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "stats [input]",
		Short: "Summarize node, link and malformed counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := c.inputPath(args)
			if err != nil {
				return err
			}
			res, err := c.convert(cmd.Context(), input, noCache, false)
			if err != nil {
				return err
			}
			writeStatsTable(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the conversion cache")
	return cmd
}

// writeStatsTable prints per-type counts followed by totals.
func writeStatsTable(w io.Writer, res *pipeline.Result) {
	rows := make([][]string, 0, len(labelgraph.NodeTypes)+3)
	for _, typ := range labelgraph.NodeTypes {
		rows = append(rows, []string{string(typ), strconv.Itoa(res.Stats.Counts[typ])})
	}
	totals := len(rows)
	rows = append(rows,
		[]string{"nodes", strconv.Itoa(res.Stats.Nodes)},
		[]string{"links", strconv.Itoa(res.Stats.Links)},
		[]string{"malformed", strconv.Itoa(res.Stats.Malformed)},
	)

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1 && row >= totals:
				return cellStyle.Foreground(colorCyan).Bold(true)
			case col == 1:
				return cellStyle.Foreground(colorCyan)
			case row >= totals:
				return cellStyle.Foreground(colorWhite).Bold(true)
			}
			return cellStyle.Foreground(colorGray)
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, statsLine(res.Stats.Nodes, res.Stats.Links, res.Stats.Malformed, res.Cached))
}
