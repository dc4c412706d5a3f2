package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// StatSplit is one raw statistics fragment as decoded from the provider.
// Its shape depends on the report type; the aggregated values live under "stat".
type StatSplit map[string]interface{}

// Stat returns the nested stat object if present
func (s StatSplit) Stat() (map[string]interface{}, bool) {
	stat, ok := s["stat"].(map[string]interface{})
	return stat, ok
}

// ValueKind discriminates the contents of a Value
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindNumber
	KindString
	KindBool
)

// Value is a single cell of a StatTable. Missing and JSON-null fields are KindNull.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

// Null is the marker stored for fields a record does not carry
var Null = Value{Kind: KindNull}

// Number builds a numeric value
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Text builds a string value
func Text(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// ValueOf converts a decoded JSON scalar into a Value
func ValueOf(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return Number(f)
		}
		return Text(t.String())
	case string:
		return Text(t)
	case bool:
		return Value{Kind: KindBool, Bool: t}
	default:
		return Text(fmt.Sprint(t))
	}
}

// IsNull reports whether the value is the null marker
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Float returns the numeric value. Numeric strings (the API reports some
// percentages as text) are parsed; anything else reports false.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindString:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// MarshalJSON encodes the value as its natural JSON scalar
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Num)
	case KindString:
		return json.Marshal(v.Str)
	case KindBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Null
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	*v = ValueOf(raw)
	return nil
}

// StatRecord is one flattened split for one player
type StatRecord struct {
	PlayerID int              `json:"playerId"`
	Season   Season           `json:"season"`
	Split    int              `json:"split"`
	Fields   map[string]Value `json:"fields"`
}

// StatTable is a collection of records sharing one reconciled schema
type StatTable struct {
	Season     Season       `json:"season"`
	ReportType string       `json:"reportType"`
	Columns    []string     `json:"columns"`
	Rows       []StatRecord `json:"rows"`
}

// NewStatTable reconciles records into a table: the schema is the sorted union
// of all field names and every row is projected onto it with nulls.
func NewStatTable(season Season, reportType string, records []StatRecord) StatTable {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for name := range rec.Fields {
			seen[name] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	rows := make([]StatRecord, 0, len(records))
	for _, rec := range records {
		fields := make(map[string]Value, len(columns))
		for _, col := range columns {
			if v, ok := rec.Fields[col]; ok {
				fields[col] = v
			} else {
				fields[col] = Null
			}
		}
		rows = append(rows, StatRecord{
			PlayerID: rec.PlayerID,
			Season:   season,
			Split:    rec.Split,
			Fields:   fields,
		})
	}

	return StatTable{
		Season:     season,
		ReportType: reportType,
		Columns:    columns,
		Rows:       rows,
	}
}

// PlayerIDs returns the distinct player ids in row order
func (t StatTable) PlayerIDs() []int {
	seen := make(map[int]struct{}, len(t.Rows))
	ids := make([]int, 0, len(t.Rows))
	for _, row := range t.Rows {
		if _, ok := seen[row.PlayerID]; ok {
			continue
		}
		seen[row.PlayerID] = struct{}{}
		ids = append(ids, row.PlayerID)
	}
	return ids
}

// Column returns the values of one column in row order
func (t StatTable) Column(name string) []Value {
	out := make([]Value, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, row.Fields[name])
	}
	return out
}

// Validate checks that every row carries exactly the table's schema
func (t StatTable) Validate() error {
	for i, row := range t.Rows {
		if len(row.Fields) != len(t.Columns) {
			return fmt.Errorf("row %d (player %d) has %d fields, schema has %d", i, row.PlayerID, len(row.Fields), len(t.Columns))
		}
		for _, col := range t.Columns {
			if _, ok := row.Fields[col]; !ok {
				return fmt.Errorf("row %d (player %d) missing field %q", i, row.PlayerID, col)
			}
		}
	}
	return nil
}
