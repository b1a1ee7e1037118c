// Package visitor holds the rules that decide which visitor attributes a
// workbook type requires, how an inbound visitor is checked against them and
// how stored visitors are rendered back to the member.
package visitor

// Field names one visitor attribute known to the system.
type Field string

const (
	FieldName             Field = "name"
	FieldMobileNo         Field = "mobile_no"
	FieldVehicleNo        Field = "vehicle_no"
	FieldFromPlace        Field = "from_place"
	FieldDestinationPlace Field = "destination_place"
	FieldInTime           Field = "in_time"
	FieldOutTime          Field = "out_time"
	FieldPhoto            Field = "photo"
	FieldSignature        Field = "signature"
)

// vocabulary is the canonical order of every known field. Schemas are
// serialized and projected in this order.
var vocabulary = []Field{
	FieldName,
	FieldMobileNo,
	FieldVehicleNo,
	FieldFromPlace,
	FieldDestinationPlace,
	FieldInTime,
	FieldOutTime,
	FieldPhoto,
	FieldSignature,
}

var vocabularyIndex = func() map[Field]int {
	m := make(map[Field]int, len(vocabulary))
	for i, f := range vocabulary {
		m[f] = i
	}
	return m
}()

// Vocabulary returns a copy of the ordered field catalog.
func Vocabulary() []Field {
	out := make([]Field, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// VocabularyNames is Vocabulary as plain strings, for API responses.
func VocabularyNames() []string {
	out := make([]string, len(vocabulary))
	for i, f := range vocabulary {
		out[i] = string(f)
	}
	return out
}

// Known reports whether f belongs to the vocabulary.
func (f Field) Known() bool {
	_, ok := vocabularyIndex[f]
	return ok
}

// IsAttachment reports whether the field is carried as an uploaded file.
func (f Field) IsAttachment() bool {
	return f == FieldPhoto || f == FieldSignature
}

// IsTimestamp reports whether the field holds an entry/exit time.
func (f Field) IsTimestamp() bool {
	return f == FieldInTime || f == FieldOutTime
}

func (f Field) String() string { return string(f) }
