// Package prompt builds the chat messages sent to the normalization model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/MereWhiplash/fieldnorm/internal/llm"
)

const systemPrompt = `You are a medical data normalization assistant with expert knowledge of German clinical abbreviations.
Normalize abbreviated German field names into standardized, ML-safe English snake_case identifiers.

RULES:
- Use your knowledge of German medical/clinical terminology to infer meanings.
- Consider the full set of fields together to infer the dataset domain (e.g., obstetric/perinatal, oncology, cardiology).
- Translate German abbreviations into their English clinical equivalents.
- Ambiguous abbreviations: provide 1-3 plausible English alternatives based on likely clinical meanings.
- Include the original abbreviation as an alternative when expanding.
- Preserve numeric suffixes, ordering, and ML-safe snake_case.
- Do NOT invent unrelated medical concepts.
- Output valid JSON only, no extra text.`

const outputFormat = `{"field_name": {"primary": "english_std_name", "alternatives": ["alt1", "alt2"]}}`

// Build returns the system and user messages for fields. contextText is the
// retrieved glossary block; samplesCSV is optional sample data.
func Build(fields []string, contextText, samplesCSV string) []llm.Message {
	var b strings.Builder
	b.WriteString("Normalize the following German clinical field names into English identifiers.\n\n")
	fmt.Fprintf(&b, "Output format:\n%s\n\n", outputFormat)
	fmt.Fprintf(&b, "Context:\n%s\n\n", contextText)
	fmt.Fprintf(&b, "Fields:\n%s", strings.Join(fields, ", "))
	if strings.TrimSpace(samplesCSV) != "" {
		fmt.Fprintf(&b, "\n\nSamples (CSV):\n%s", strings.TrimRight(samplesCSV, "\n"))
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}
