package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/evolution-metrics/internal/condition"
	"github.com/naka-gawa/evolution-metrics/internal/domain"
	"github.com/naka-gawa/evolution-metrics/internal/report"
	"github.com/naka-gawa/evolution-metrics/internal/usecase"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Lists the available metrics, conditions and periods",
	Run: func(cmd *cobra.Command, args []string) {
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.AppendHeader(table.Row{"Category", "Metric"})
		for _, category := range domain.Categories {
			for _, def := range usecase.Definitions(category) {
				tbl.AppendRow(table.Row{category, def.Name})
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())

		formats := make([]string, len(report.Formats))
		for i, f := range report.Formats {
			formats[i] = string(f)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Commit conditions: %s\n", strings.Join(condition.CommitConditionNames(), ", "))
		fmt.Fprintf(cmd.OutOrStdout(), "Code conditions:   %s\n", strings.Join(condition.CodeConditionNames(), ", "))
		fmt.Fprintf(cmd.OutOrStdout(), "Periods:           day, week, month, quarter, year\n")
		fmt.Fprintf(cmd.OutOrStdout(), "Formats:           %s\n", strings.Join(formats, ", "))
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
