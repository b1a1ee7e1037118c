package visitor

import (
	"encoding/json"
	"strings"
)

// FieldMap carries scalar visitor values keyed by known field. Unknown
// keys never make it in; see DecodeFieldMap.
type FieldMap map[Field]string

// Get returns the trimmed value of f and whether it is non-empty.
func (m FieldMap) Get(f Field) (string, bool) {
	v := strings.TrimSpace(m[f])
	return v, v != ""
}

// DecodeFieldMap reads a JSON object and keeps only vocabulary keys with
// scalar values. Numbers are kept in their literal form so mobile numbers
// sent unquoted survive.
func DecodeFieldMap(raw map[string]json.RawMessage) FieldMap {
	out := make(FieldMap, len(raw))
	for k, v := range raw {
		f := Field(k)
		if !f.Known() || f.IsAttachment() {
			continue
		}
		if s, ok := scalarString(v); ok {
			out[f] = s
		}
	}
	return out
}

func scalarString(v json.RawMessage) (string, bool) {
	if len(v) == 0 || string(v) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// Attachments are raw uploaded files keyed by attachment field.
type Attachments map[Field][]byte

// Has reports whether a non-empty upload exists for f.
func (a Attachments) Has(f Field) bool {
	return len(a[f]) > 0
}
