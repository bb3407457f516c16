package main

import (
	"github.com/spf13/cobra"

	"github.com/MereWhiplash/fieldnorm/internal/service"
)

var flagPromptCSV string

var promptCmd = &cobra.Command{
	Use:   "prompt [field]...",
	Short: "Print the messages that would be sent to the chat model",
	Long: `Retrieves glossary context for the fields and prints the system and user
messages without calling the model. With --csv the fields come from the
file's header and its rows are included as samples.`,
	RunE: runPrompt,
}

func init() {
	promptCmd.Flags().StringVar(&flagPromptCSV, "csv", "", "CSV file whose header and rows are used (- for stdin)")
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	table, err := tableFromInput(cmd, flagPromptCSV, args)
	if err != nil {
		return err
	}
	samples, err := service.SamplesCSV(table)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.Service.Prompt(ctx, table.Names(), samples)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(out(cmd), o.Messages)
	}
	printMessages(out(cmd), o.Messages)
	return nil
}
