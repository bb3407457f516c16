package mcptypes

import (
	"strings"
	"testing"

	"github.com/MereWhiplash/fieldnorm/internal/apitypes"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

func TestNormalizeInput_Table(t *testing.T) {
	in := NormalizeInput{
		Fields:  []string{"SSW", "GG"},
		Samples: [][]string{{"38", "3200"}, {"40", ""}},
	}

	table, err := in.Table()
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("table invalid: %v", err)
	}
	if got := table.Names(); got[0] != "SSW" || got[1] != "GG" {
		t.Errorf("unexpected names: %v", got)
	}
	if table.Columns[1].Values[1] != "" {
		t.Errorf("unexpected value: %v", table.Columns[1].Values[1])
	}
}

func TestNormalizeInput_TableNoSamples(t *testing.T) {
	table, err := NormalizeInput{Fields: []string{"KU"}}.Table()
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if len(table.Columns[0].Values) != 0 {
		t.Errorf("expected no values, got %v", table.Columns[0].Values)
	}
}

func TestNormalizeInput_TableErrors(t *testing.T) {
	tests := []struct {
		name string
		in   NormalizeInput
	}{
		{"no fields", NormalizeInput{}},
		{"duplicate field", NormalizeInput{Fields: []string{"SSW", "SSW"}}},
		{"short row", NormalizeInput{Fields: []string{"SSW", "GG"}, Samples: [][]string{{"38"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.in.Table(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNormalizations(t *testing.T) {
	res := types.NewResult()
	res.Set("GG", types.Normalization{Primary: "birth_weight"})
	res.Set("SSW", types.Normalization{Primary: "gestational_week", Alternatives: []string{"ga_weeks"}})

	got := Normalizations(res)
	if len(got) != 2 || got[0].Field != "GG" || got[1].Field != "SSW" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Alternatives == nil {
		t.Error("expected empty alternatives, not nil")
	}
	if got[1].Alternatives[0] != "ga_weeks" {
		t.Errorf("unexpected alternatives: %v", got[1].Alternatives)
	}
}

func TestFilterGlossary(t *testing.T) {
	entries := []types.GlossaryEntry{
		{Abbr: "SSW", Meaning: "gestational_week"},
		{Abbr: "GG", Meaning: "birth_weight"},
		{Abbr: "GA", Meaning: "gestational_age"},
	}

	if got := FilterGlossary(entries, ""); len(got) != 3 {
		t.Errorf("empty query should return all, got %d", len(got))
	}
	if got := FilterGlossary(entries, " GESTATIONAL "); len(got) != 2 {
		t.Errorf("expected 2 matches on meaning, got %d", len(got))
	}
	if got := FilterGlossary(entries, "gg"); len(got) != 1 || got[0].Abbr != "GG" {
		t.Errorf("expected GG, got %+v", got)
	}
	if got := FilterGlossary(entries, "xyz"); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestFormatRetrieve(t *testing.T) {
	text := FormatRetrieve(RetrieveOutput{
		Fields: []apitypes.FieldResult{
			{Field: "SSW", Matches: []string{"SSW→gestational_week"}},
			{Field: "foo", Matches: []string{}},
		},
		Context: "SSW : {'SSW': 'gestational_week'}\n",
	})

	for _, want := range []string{
		"SSW: SSW→gestational_week\n",
		"foo: no confident glossary match\n",
		"\nContext:\nSSW : {'SSW': 'gestational_week'}\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}
}

func TestResults(t *testing.T) {
	ok := TextResult("done")
	if ok.IsError || len(ok.Content) != 1 {
		t.Errorf("unexpected text result: %+v", ok)
	}
	bad := ErrorResult("boom")
	if !bad.IsError {
		t.Error("expected error result")
	}
}
