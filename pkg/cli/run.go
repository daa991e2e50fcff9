package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/mtc-analytics/patlens/pkg/presentation"
	"github.com/spf13/cobra"
)

var (
	runSetFlags []string
	runCSVPath  string
	runShowSQL  bool
)

const maxDisplayRows = 25

var runCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run a catalog query",
	Example: `  patlens run Q01 --set year_start=2018 --set year_end=2020
  patlens run Q02 --set jurisdictions=EP,US --csv out.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parameters, err := parseSetFlags(runSetFlags)
		if err != nil {
			PrintError(err)
			return err
		}

		client := NewClient(gatewayHTTPAddr)
		result, err := client.RunQuery(cmd.Context(), args[0], parameters)
		if err != nil {
			PrintError(err)
			return err
		}

		if runCSVPath != "" {
			f, err := os.Create(runCSVPath)
			if err != nil {
				PrintError(err)
				return err
			}
			defer f.Close()
			if err := presentation.WriteCSV(f, result.Table); err != nil {
				PrintError(err)
				return err
			}
			PrintSuccess(fmt.Sprintf("wrote %d rows to %s", result.RowCount, runCSVPath))
		}

		if PrintJSON(result) {
			return nil
		}

		PrintNewline()
		PrintInfo(result.Summary.Headline)
		PrintKeyValue("Rows", fmt.Sprintf("%d", result.RowCount))
		PrintKeyValue("Duration", result.Duration)
		if result.CacheHit {
			PrintKeyValue("Cache", "hit")
		}

		if runShowSQL {
			PrintNewline()
			PrintInfo("Effective SQL:")
			for _, line := range strings.Split(result.EffectiveSQL, "\n") {
				PrintIndentedCode(line)
			}
		}

		if result.Table != nil && !result.Table.Empty() {
			headers := make([]string, len(result.Table.Columns))
			for i, col := range result.Table.Columns {
				headers[i] = strings.ToUpper(col.Name)
			}
			table := NewTable(headers...)
			for i, row := range result.Table.Rows {
				if i >= maxDisplayRows {
					break
				}
				cells := make([]string, len(row))
				for j, cell := range row {
					cells[j] = Truncate(fmt.Sprintf("%v", cell), 40)
				}
				table.AddRow(cells...)
			}
			PrintNewline()
			table.Print()
			if result.RowCount > maxDisplayRows {
				PrintHint(fmt.Sprintf("showing %d of %d rows, use --csv for the full result", maxDisplayRows, result.RowCount))
			}
		}
		PrintNewline()
		return nil
	},
}

// parseSetFlags turns repeated --set name=value flags into the raw parameter
// map. Values stay strings; the gateway coerces them per parameter kind.
func parseSetFlags(flags []string) (map[string]any, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	parameters := make(map[string]any, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, expected name=value", f)
		}
		parameters[name] = value
	}
	return parameters, nil
}

func init() {
	runCmd.Flags().StringArrayVar(&runSetFlags, "set", nil, "Set a parameter as name=value (repeatable)")
	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "Write the full result to a CSV file")
	runCmd.Flags().BoolVar(&runShowSQL, "sql", false, "Print the effective SQL")
}
