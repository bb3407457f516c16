package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeighbors_Dict(t *testing.T) {
	ns := Neighbors{
		{Abbr: "SSW", Meaning: "gestational_week", Score: 0.9},
		{Abbr: "Mutter's", Meaning: `a\b`, Score: 0.5},
	}
	assert.Equal(t, `{'SSW': 'gestational_week', 'Mutter\'s': 'a\\b'}`, ns.Dict())
	assert.Equal(t, "{}", Neighbors{}.Dict())
}

func TestNeighbors_DictRepeatedAbbr(t *testing.T) {
	ns := Neighbors{
		{Abbr: "GG", Meaning: "birth_weight"},
		{Abbr: "KU", Meaning: "head_circumference"},
		{Abbr: "GG", Meaning: "gestational_age"},
	}
	assert.Equal(t, "{'GG': 'gestational_age', 'KU': 'head_circumference'}", ns.Dict())
}

func TestFieldContext_Order(t *testing.T) {
	c := NewFieldContext()
	c.Set("b", Neighbors{{Abbr: "B"}})
	c.Set("a", Neighbors{{Abbr: "A"}})
	c.Set("b", Neighbors{{Abbr: "B2"}})

	assert.Equal(t, []string{"b", "a"}, c.Keys())
	assert.Equal(t, 2, c.Len())

	ns, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, "B2", ns[0].Abbr)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	var zero FieldContext
	zero.Set("x", nil)
	assert.Equal(t, []string{"x"}, zero.Keys())
}

func TestFieldContext_MarshalJSON(t *testing.T) {
	c := NewFieldContext()
	c.Set("z", Neighbors{{Abbr: "Z", Meaning: "zeta", Score: 1}})
	c.Set("a", Neighbors{})

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"z":[{"abbr":"Z","meaning":"zeta","score":1}],"a":[]}`, string(b))
}

func TestResult_JSONKeepsOrder(t *testing.T) {
	in := `{"SSW":{"primary":"gestational_week","alternatives":["ga_weeks"]},"GG":{"primary":"birth_weight","alternatives":[]},"SSW":{"primary":"pregnancy_week","alternatives":[]}}`

	r := NewResult()
	require.NoError(t, json.Unmarshal([]byte(in), r))

	assert.Equal(t, []string{"SSW", "GG"}, r.Keys())
	n, _ := r.Get("SSW")
	assert.Equal(t, "pregnancy_week", n.Primary)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"SSW":{"primary":"pregnancy_week","alternatives":[]},"GG":{"primary":"birth_weight","alternatives":[]}}`, string(out))
}

func TestResult_UnmarshalRejectsNonObject(t *testing.T) {
	r := NewResult()
	assert.Error(t, json.Unmarshal([]byte(`["SSW"]`), r))
	assert.Error(t, json.Unmarshal([]byte(`{"SSW":"gestational_week"}`), r))
}

func TestTable_JSON(t *testing.T) {
	in := `{"SSW":[38,40.5,null],"GG":["3200","x",true],"SSW":[1,2,3]}`

	var table Table
	require.NoError(t, json.Unmarshal([]byte(in), &table))

	assert.Equal(t, []string{"SSW", "GG"}, table.Names())
	assert.Equal(t, json.Number("1"), table.Columns[0].Values[0])
	assert.Equal(t, true, table.Columns[1].Values[2])
	assert.True(t, table.HasColumn("GG"))
	assert.False(t, table.HasColumn("gg"))

	out, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Equal(t, `{"SSW":[1,2,3],"GG":["3200","x",true]}`, string(out))
}

func TestTable_MarshalNilValues(t *testing.T) {
	out, err := json.Marshal(&Table{Columns: []Column{{Name: "KU"}}})
	require.NoError(t, err)
	assert.Equal(t, `{"KU":[]}`, string(out))
}

func TestTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		table   *Table
		wantErr string
	}{
		{"nil", nil, "no columns"},
		{"empty", &Table{}, "no columns"},
		{"blank name", &Table{Columns: []Column{{Name: " "}}}, "empty"},
		{"duplicate", &Table{Columns: []Column{{Name: "a"}, {Name: "a"}}}, "duplicate"},
		{"ragged", &Table{Columns: []Column{
			{Name: "a", Values: []any{1, 2}},
			{Name: "b", Values: []any{1}},
		}}, "same length"},
		{"ok", &Table{Columns: []Column{
			{Name: "a", Values: []any{1}},
			{Name: "b", Values: []any{nil}},
		}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGlossaryEntry_Validate(t *testing.T) {
	assert.NoError(t, GlossaryEntry{Abbr: "SSW", Meaning: "gestational_week"}.Validate())
	assert.Error(t, GlossaryEntry{Abbr: "", Meaning: "x"}.Validate())
	assert.Error(t, GlossaryEntry{Abbr: "SSW", Meaning: " "}.Validate())
}
