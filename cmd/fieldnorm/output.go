package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/MereWhiplash/fieldnorm/internal/apitypes"
	"github.com/MereWhiplash/fieldnorm/internal/llm"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printRetrieve prints one block per field: thresholded matches, then every neighbor
func printRetrieve(w io.Writer, resp *apitypes.RetrieveResponse) {
	for i, f := range resp.Fields {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, f.Field)
		if len(f.Matches) == 0 {
			fmt.Fprintln(w, "  matches:   -")
		} else {
			fmt.Fprintf(w, "  matches:   %s\n", strings.Join(f.Matches, ", "))
		}
		parts := make([]string, len(f.Neighbors))
		for j, n := range f.Neighbors {
			parts[j] = fmt.Sprintf("%s=%s (%.3f)", n.Abbr, n.Meaning, n.Score)
		}
		fmt.Fprintf(w, "  neighbors: %s\n", strings.Join(parts, ", "))
	}
}

func printNormalizations(w io.Writer, res *types.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, field := range res.Keys() {
		n, _ := res.Get(field)
		alts := "-"
		if len(n.Alternatives) > 0 {
			alts = strings.Join(n.Alternatives, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", field, n.Primary, alts)
	}
	tw.Flush()
}

func printGlossary(w io.Writer, entries []types.GlossaryEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\n", e.Abbr, e.Meaning)
	}
	tw.Flush()
}

func printMessages(w io.Writer, msgs []llm.Message) {
	for i, m := range msgs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%s]\n%s\n", m.Role, m.Content)
	}
}
