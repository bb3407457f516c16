package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MereWhiplash/fieldnorm/internal/apitypes"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

// runCLI executes the root command with fresh flag values and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	flagEnvFile = filepath.Join(t.TempDir(), "missing.env")
	flagGlossary, flagIndexDriver, flagEmbeddingProvider, flagAPIURL = "", "", "", ""
	flagJSON, flagVerbose = false, false
	flagPromptCSV, flagNormalizeCSV, flagNormalizeRaw = "", "", false

	t.Setenv("EMBEDDING_PROVIDER", "hashing")
	t.Setenv("INDEX_DRIVER", "memory")
	t.Setenv("FIELDNORM_API_URL", "")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--env-file", flagEnvFile}, args...))
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestGlossary_Local(t *testing.T) {
	out, err := runCLI(t, "glossary", "gestational")
	if err != nil {
		t.Fatalf("glossary: %v", err)
	}
	if !strings.Contains(out, "SSW") || !strings.Contains(out, "gestational_week") {
		t.Errorf("expected SSW entry, got:\n%s", out)
	}
	if strings.Contains(out, "birth_weight") {
		t.Errorf("filter not applied:\n%s", out)
	}
}

func TestGlossary_CustomFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.json")
	if err := os.WriteFile(path, []byte(`[{"abbr":"HF","meaning":"heart_rate"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "glossary", "--json", "--glossary", path)
	if err != nil {
		t.Fatalf("glossary: %v", err)
	}

	var entries []types.GlossaryEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(entries) != 1 || entries[0].Abbr != "HF" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestGlossary_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/glossary" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(apitypes.GlossaryResponse{Entries: []types.GlossaryEntry{
			{Abbr: "RR", Meaning: "blood_pressure"},
		}})
	}))
	defer srv.Close()

	out, err := runCLI(t, "glossary", "--api-url", srv.URL)
	if err != nil {
		t.Fatalf("glossary: %v", err)
	}
	if !strings.Contains(out, "blood_pressure") {
		t.Errorf("expected remote entry, got:\n%s", out)
	}
}

func TestRetrieve_Local(t *testing.T) {
	out, err := runCLI(t, "retrieve", "--json", "SSW", "GG")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}

	var resp apitypes.RetrieveResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(resp.Fields) != 2 || resp.Fields[0].Field != "SSW" || resp.Fields[1].Field != "GG" {
		t.Fatalf("unexpected fields: %+v", resp.Fields)
	}
	if len(resp.Fields[0].Neighbors) != 2 {
		t.Errorf("expected 2 neighbors, got %d", len(resp.Fields[0].Neighbors))
	}
	if resp.Fields[0].Neighbors[0].Abbr != "SSW" {
		t.Errorf("expected SSW as top neighbor, got %s", resp.Fields[0].Neighbors[0].Abbr)
	}
	if !strings.HasPrefix(resp.Context, "SSW : {'SSW': 'gestational_week'") {
		t.Errorf("unexpected context:\n%s", resp.Context)
	}
}

func TestRetrieve_Text(t *testing.T) {
	out, err := runCLI(t, "retrieve", "ssw")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if !strings.Contains(out, "matches:   SSW→gestational_week") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPrompt_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("SSW,GG\n38,3200\n40,\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "prompt", "--csv", path)
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	for _, want := range []string{"[system]", "[user]", "Fields:\nSSW, GG", "SSW,GG\n38,3200\n40,"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrompt_CSVAndFields(t *testing.T) {
	_, err := runCLI(t, "prompt", "--csv", "x.csv", "SSW")
	if err == nil || !strings.Contains(err.Error(), "not both") {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestNormalize_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req apitypes.NormalizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if got := req.Data.Names(); len(got) != 2 || got[0] != "SSW" || got[1] != "KU" {
			t.Errorf("unexpected columns: %v", got)
		}
		w.Write([]byte(`{"SSW":{"primary":"gestational_week","alternatives":["ga_weeks"]},"KU":{"primary":"head_circumference","alternatives":[]}}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "normalize", "--api-url", srv.URL, "SSW", "KU", "SSW")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "SSW") || !strings.Contains(lines[0], "ga_weeks") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "KU") || !strings.HasSuffix(lines[1], "-") {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestNormalize_LocalNeedsKey(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "grok")
	t.Setenv("GROK_API_KEY", "")

	_, err := runCLI(t, "normalize", "SSW")
	if err == nil || !strings.Contains(err.Error(), "GROK_API_KEY") {
		t.Errorf("expected missing key error, got %v", err)
	}
}

func TestReadTable(t *testing.T) {
	table, err := readTable(strings.NewReader("SSW,GG\n38,\n40.5,3100\n"))
	if err != nil {
		t.Fatalf("readTable: %v", err)
	}

	if got := table.Names(); len(got) != 2 || got[0] != "SSW" || got[1] != "GG" {
		t.Errorf("unexpected names: %v", got)
	}
	if table.Columns[1].Values[0] != nil {
		t.Errorf("empty cell should be nil, got %v", table.Columns[1].Values[0])
	}
	if table.Columns[0].Values[1] != "40.5" {
		t.Errorf("unexpected value: %v", table.Columns[0].Values[1])
	}
}

func TestReadTable_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"duplicate header", "SSW,SSW\n1,2\n"},
		{"ragged", "SSW,GG\n1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readTable(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
