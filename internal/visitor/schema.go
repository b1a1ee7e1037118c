package visitor

import "strings"

// Schema is the set of mandatory fields of one workbook type. It is stored
// as a bit set over the vocabulary so iteration and serialization always
// follow the canonical field order.
type Schema struct {
	bits uint32
}

// DeriveSchema intersects the requested names with the vocabulary. Each
// element may itself be a comma-separated list. Unknown names and
// duplicates are dropped. An empty intersection is an EmptySchema error.
func DeriveSchema(requested []string) (Schema, error) {
	var s Schema
	for _, item := range requested {
		for _, raw := range strings.Split(item, ",") {
			if i, ok := vocabularyIndex[Field(strings.TrimSpace(raw))]; ok {
				s.bits |= 1 << uint(i)
			}
		}
	}
	if s.Empty() {
		return Schema{}, ErrEmptySchema()
	}
	return s, nil
}

// DeriveSchemaFromList splits a comma-separated wire value and derives a schema from it.
func DeriveSchemaFromList(list string) (Schema, error) {
	return DeriveSchema([]string{list})
}

// ParseSchema rebuilds a stored schema. Unlike DeriveSchema it accepts an
// empty value: a workbook type that was never configured requires nothing.
func ParseSchema(stored string) Schema {
	var s Schema
	for _, raw := range strings.Split(stored, ",") {
		if i, ok := vocabularyIndex[Field(strings.TrimSpace(raw))]; ok {
			s.bits |= 1 << uint(i)
		}
	}
	return s
}

// SchemaOf builds a schema directly from known fields.
func SchemaOf(fields ...Field) Schema {
	var s Schema
	for _, f := range fields {
		if i, ok := vocabularyIndex[f]; ok {
			s.bits |= 1 << uint(i)
		}
	}
	return s
}

// FullSchema contains every vocabulary field.
func FullSchema() Schema {
	return SchemaOf(vocabulary...)
}

// Has reports whether f is mandatory.
func (s Schema) Has(f Field) bool {
	i, ok := vocabularyIndex[f]
	return ok && s.bits&(1<<uint(i)) != 0
}

// Empty reports whether no field is mandatory.
func (s Schema) Empty() bool { return s.bits == 0 }

// Len is the number of mandatory fields.
func (s Schema) Len() int {
	n := 0
	for b := s.bits; b != 0; b &= b - 1 {
		n++
	}
	return n
}

// Fields lists the mandatory fields in vocabulary order.
func (s Schema) Fields() []Field {
	out := make([]Field, 0, s.Len())
	for i, f := range vocabulary {
		if s.bits&(1<<uint(i)) != 0 {
			out = append(out, f)
		}
	}
	return out
}

// String is the canonical storage form, e.g. "name,mobile_no,photo".
func (s Schema) String() string {
	fields := s.Fields()
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}

// Equal compares two schemas as sets.
func (s Schema) Equal(o Schema) bool { return s.bits == o.bits }
