package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chboard/chboard/internal/report"
)

var reportTables []string
var reportJSONPath string
var reportOutPath string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the compression report once and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}

		rep, err := eng.Run(context.Background())
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("tables") {
			rep = rep.Filter(reportTables)
		}

		if reportJSONPath != "" {
			if err := report.WriteJSON(rep, reportJSONPath); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", reportJSONPath)
			return nil
		}

		if reportOutPath != "" {
			if err := report.WriteText(rep, reportOutPath, eng.Config().Compat.TextCompression); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", reportOutPath)
			return nil
		}

		fmt.Print(report.FormatText(rep, eng.Config().Compat.TextCompression))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringSliceVar(&reportTables, "tables", nil, "only include these tables (default: all)")
	reportCmd.Flags().StringVar(&reportJSONPath, "json", "", "write the report as JSON to this path")
	reportCmd.Flags().StringVar(&reportOutPath, "out", "", "write the report as text to this path")
	rootCmd.AddCommand(reportCmd)
}
