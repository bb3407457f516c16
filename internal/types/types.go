// internal/types/types.go
// Package types contains shared data types that have no CGO dependencies.
// This allows packages like the shim to use them without pulling in sqlite-vec.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// GlossaryEntry is a curated abbreviation and its meaning
type GlossaryEntry struct {
	Abbr    string `json:"abbr" yaml:"abbr"`
	Meaning string `json:"meaning" yaml:"meaning"`
}

// Validate returns an error if the entry is incomplete
func (e GlossaryEntry) Validate() error {
	if strings.TrimSpace(e.Abbr) == "" {
		return fmt.Errorf("glossary entry has empty abbreviation (meaning %q)", e.Meaning)
	}
	if strings.TrimSpace(e.Meaning) == "" {
		return fmt.Errorf("glossary entry %q has empty meaning", e.Abbr)
	}
	return nil
}

// Neighbor is a single glossary hit for a queried field
type Neighbor struct {
	Abbr    string  `json:"abbr"`
	Meaning string  `json:"meaning"`
	Score   float32 `json:"score"`
}

// String renders the neighbor as "abbr→meaning"
func (n Neighbor) String() string {
	return n.Abbr + "→" + n.Meaning
}

// Neighbors holds the nearest glossary entries for one field, best first
type Neighbors []Neighbor

// Dict renders the neighbors as {'abbr': 'meaning', ...}. When an abbreviation
// repeats, the later meaning replaces the earlier one in place.
func (ns Neighbors) Dict() string {
	keys := make([]string, 0, len(ns))
	vals := make(map[string]string, len(ns))
	for _, n := range ns {
		if _, ok := vals[n.Abbr]; !ok {
			keys = append(keys, n.Abbr)
		}
		vals[n.Abbr] = n.Meaning
	}

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(k))
		b.WriteString(": ")
		b.WriteString(quote(vals[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// FieldContext maps queried field names to their neighbors in insertion order.
// Setting an existing field keeps its position and replaces its value.
type FieldContext struct {
	keys   []string
	values map[string]Neighbors
}

// NewFieldContext creates an empty FieldContext
func NewFieldContext() *FieldContext {
	return &FieldContext{values: make(map[string]Neighbors)}
}

// Set records the neighbors for a field
func (c *FieldContext) Set(field string, ns Neighbors) {
	if c.values == nil {
		c.values = make(map[string]Neighbors)
	}
	if _, ok := c.values[field]; !ok {
		c.keys = append(c.keys, field)
	}
	c.values[field] = ns
}

// Get returns the neighbors recorded for a field
func (c *FieldContext) Get(field string) (Neighbors, bool) {
	ns, ok := c.values[field]
	return ns, ok
}

// Keys returns the fields in insertion order
func (c *FieldContext) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of unique fields
func (c *FieldContext) Len() int {
	return len(c.keys)
}

// MarshalJSON encodes the context as an object in insertion order
func (c *FieldContext) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Normalization is the model's suggestion for one field
type Normalization struct {
	Primary      string   `json:"primary"`
	Alternatives []string `json:"alternatives"`
}

// Result maps field names to normalizations, preserving the order the model returned them in
type Result struct {
	keys   []string
	values map[string]Normalization
}

// NewResult creates an empty Result
func NewResult() *Result {
	return &Result{values: make(map[string]Normalization)}
}

// Set records the normalization for a field
func (r *Result) Set(field string, n Normalization) {
	if r.values == nil {
		r.values = make(map[string]Normalization)
	}
	if _, ok := r.values[field]; !ok {
		r.keys = append(r.keys, field)
	}
	r.values[field] = n
}

// Get returns the normalization for a field
func (r *Result) Get(field string) (Normalization, bool) {
	n, ok := r.values[field]
	return n, ok
}

// Keys returns the fields in order
func (r *Result) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields
func (r *Result) Len() int {
	return len(r.keys)
}

// MarshalJSON encodes the result as an object in order
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping key order
func (r *Result) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	r.keys = nil
	r.values = make(map[string]Normalization)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var n Normalization
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		r.Set(key, n)
	}
	_, err = dec.Token()
	return err
}

// Column is one named column of sample values
type Column struct {
	Name   string
	Values []any
}

// Table holds sample data by column, in the order the columns were given
type Table struct {
	Columns []Column
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column named name exists
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Validate checks the table is non-empty, has unique names and equal-length columns
func (t *Table) Validate() error {
	if t == nil || len(t.Columns) == 0 {
		return fmt.Errorf("no columns given")
	}
	seen := make(map[string]bool, len(t.Columns))
	rows := len(t.Columns[0].Values)
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("column name is empty")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Values) != rows {
			return fmt.Errorf("all columns must be of the same length: %q has %d values, want %d", c.Name, len(c.Values), rows)
		}
	}
	return nil
}

// MarshalJSON encodes the table as {"column": [values...]} in column order
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		values := c.Values
		if values == nil {
			values = []any{}
		}
		vb, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes {"column": [values...]} keeping column order. Numbers
// keep their literal text as json.Number. A repeated column replaces the
// earlier one in place.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	t.Columns = nil
	pos := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected column name, got %v", tok)
		}
		var values []any
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		if i, ok := pos[name]; ok {
			t.Columns[i].Values = values
			continue
		}
		pos[name] = len(t.Columns)
		t.Columns = append(t.Columns, Column{Name: name, Values: values})
	}
	_, err = dec.Token()
	return err
}
