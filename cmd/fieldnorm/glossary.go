package main

import (
	"github.com/spf13/cobra"

	"github.com/MereWhiplash/fieldnorm/internal/glossary"
	"github.com/MereWhiplash/fieldnorm/internal/mcptypes"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary [query]",
	Short: "List glossary entries, optionally filtered by a substring",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGlossary,
}

func init() {
	rootCmd.AddCommand(glossaryCmd)
}

func runGlossary(cmd *cobra.Command, args []string) error {
	var entries []types.GlossaryEntry
	if c := remoteClient(); c != nil {
		e, err := c.Glossary(cmd.Context())
		if err != nil {
			return err
		}
		entries = e
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := glossary.Load(cfg.GlossaryPath)
		if err != nil {
			return err
		}
		entries = e
	}

	if len(args) == 1 {
		entries = mcptypes.FilterGlossary(entries, args[0])
	}

	if flagJSON {
		if entries == nil {
			entries = []types.GlossaryEntry{}
		}
		return printJSON(out(cmd), entries)
	}
	printGlossary(out(cmd), entries)
	return nil
}
