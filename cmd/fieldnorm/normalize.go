package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MereWhiplash/fieldnorm/internal/types"
)

var (
	flagNormalizeCSV string
	flagNormalizeRaw bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [field]...",
	Short: "Ask the chat model for normalized names",
	Long: `Normalizes the given field names, or the header of a CSV file with --csv
(its rows are sent along as samples). Prints field, primary name and
alternatives, or the ordered JSON object with --json.`,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVar(&flagNormalizeCSV, "csv", "", "CSV file whose header and rows are used (- for stdin)")
	normalizeCmd.Flags().BoolVar(&flagNormalizeRaw, "raw", false, "Print the raw model reply (local mode only)")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	table, err := tableFromInput(cmd, flagNormalizeCSV, args)
	if err != nil {
		return err
	}

	var res *types.Result
	if c := remoteClient(); c != nil {
		if flagNormalizeRaw {
			return fmt.Errorf("--raw is not available with --api-url")
		}
		res, err = c.Normalize(ctx, table)
		if err != nil {
			return err
		}
	} else {
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		nr, err := a.Service.Normalize(ctx, table)
		if err != nil {
			return err
		}
		if flagNormalizeRaw {
			fmt.Fprintln(out(cmd), nr.Raw)
			return nil
		}
		res = nr.Result
	}

	if flagJSON {
		return printJSON(out(cmd), res)
	}
	printNormalizations(out(cmd), res)
	return nil
}

// tableFromInput builds a table from a CSV file, or from bare field names
func tableFromInput(cmd *cobra.Command, csvPath string, fields []string) (*types.Table, error) {
	if csvPath != "" {
		if len(fields) > 0 {
			return nil, fmt.Errorf("pass either --csv or field names, not both")
		}
		if csvPath == "-" {
			return readTable(cmd.InOrStdin())
		}
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open csv: %w", err)
		}
		defer f.Close()
		return readTable(f)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields given")
	}
	table := &types.Table{}
	for _, name := range fields {
		if !table.HasColumn(name) {
			table.Columns = append(table.Columns, types.Column{Name: name})
		}
	}
	return table, nil
}

// readTable reads a CSV with a header row. Empty cells become nulls.
func readTable(r io.Reader) (*types.Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}

	header := records[0]
	table := &types.Table{Columns: make([]types.Column, len(header))}
	for i, name := range header {
		table.Columns[i] = types.Column{Name: name, Values: make([]any, 0, len(records)-1)}
	}
	for _, row := range records[1:] {
		for i, cell := range row {
			var v any
			if cell != "" {
				v = cell
			}
			table.Columns[i].Values = append(table.Columns[i].Values, v)
		}
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
