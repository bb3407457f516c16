package main

import (
	"github.com/spf13/cobra"

	"github.com/MereWhiplash/fieldnorm/internal/apitypes"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <field>...",
	Short: "Show the nearest glossary entries for each field",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRetrieve,
}

func init() {
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var resp *apitypes.RetrieveResponse
	if c := remoteClient(); c != nil {
		r, err := c.Retrieve(ctx, args)
		if err != nil {
			return err
		}
		resp = r
	} else {
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		o, err := a.Service.Retrieve(ctx, args)
		if err != nil {
			return err
		}
		resp = &apitypes.RetrieveResponse{Fields: o.FieldResults(), Context: o.ContextText}
	}

	if flagJSON {
		return printJSON(out(cmd), resp)
	}
	printRetrieve(out(cmd), resp)
	return nil
}
