package normalizer

import (
	"encoding/json"
	"strings"

	"nhlstats/ingestion/internal/models"
)

const statPrefix = "stat."

// Flatten turns a nested split into dot-joined field names. Fields under
// "stat" lose the prefix, so "stat.goals" becomes "goals". Arrays are kept
// as their JSON text; empty objects contribute no fields. When a stat field
// and a split-level field share a name, the stat field wins.
func Flatten(split models.StatSplit) map[string]models.Value {
	out := make(map[string]models.Value)
	flattenInto(out, "", split)

	fields := make(map[string]models.Value, len(out))
	for name, v := range out {
		if !strings.HasPrefix(name, statPrefix) {
			fields[name] = v
		}
	}
	for name, v := range out {
		if strings.HasPrefix(name, statPrefix) {
			fields[strings.TrimPrefix(name, statPrefix)] = v
		}
	}
	return fields
}

func flattenInto(out map[string]models.Value, prefix string, node map[string]interface{}) {
	for key, raw := range node {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		switch v := raw.(type) {
		case map[string]interface{}:
			flattenInto(out, name, v)
		case []interface{}:
			b, err := json.Marshal(v)
			if err != nil {
				out[name] = models.Null
				continue
			}
			out[name] = models.Text(string(b))
		default:
			out[name] = models.ValueOf(v)
		}
	}
}
