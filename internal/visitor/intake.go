package visitor

import "time"

// TimestampLayout is the wire format of in_time/out_time (YYYYMMDD HH:MM:SS).
// Parsed values carry no zone and are stored as-is.
const (
	TimestampLayout     = "20060102 15:04:05"
	TimestampLayoutHint = "YYYYMMDD HH:MM:SS"
)

// Intake is a visitor submission that passed validation.
type Intake struct {
	Values      FieldMap
	InTime      *time.Time
	OutTime     *time.Time
	Attachments Attachments
}

// Value returns a validated scalar, or "" when it was not supplied.
func (in Intake) Value(f Field) string {
	v, _ := in.Values.Get(f)
	return v
}

// ValidateIntake checks a submission against the workbook type's mandatory
// fields. Attachment fields in the schema must have an upload, every other
// mandatory field must have a non-empty value, and any supplied timestamp
// must parse. Fields outside the schema are carried through when present.
// It performs no I/O.
func ValidateIntake(schema Schema, payload FieldMap, attachments Attachments) (Intake, error) {
	needed := SchemaOf(schema.Fields()...)

	for _, f := range needed.Fields() {
		if f.IsAttachment() && !attachments.Has(f) {
			return Intake{}, ErrMissingAttachment(f)
		}
	}
	for _, f := range needed.Fields() {
		if f.IsAttachment() {
			continue
		}
		if _, ok := payload.Get(f); !ok {
			return Intake{}, ErrMissingField(f)
		}
	}

	out := Intake{Values: make(FieldMap), Attachments: make(Attachments)}
	for _, f := range vocabulary {
		if f.IsAttachment() {
			if attachments.Has(f) {
				out.Attachments[f] = attachments[f]
			}
			continue
		}
		v, ok := payload.Get(f)
		if !ok {
			continue
		}
		if f.IsTimestamp() {
			t, err := ParseTimestamp(v)
			if err != nil {
				return Intake{}, ErrInvalidTimestamp(f, v, err)
			}
			if f == FieldInTime {
				out.InTime = &t
			} else {
				out.OutTime = &t
			}
		}
		out.Values[f] = v
	}
	return out, nil
}

// ParseTimestamp parses a wire timestamp.
func ParseTimestamp(raw string) (time.Time, error) {
	return time.Parse(TimestampLayout, raw)
}

// Record builds the stored form of the intake once attachments have been
// turned into media references.
func (in Intake) Record(photoRef, signatureRef string) Record {
	return Record{
		Name:             in.Value(FieldName),
		MobileNo:         in.Value(FieldMobileNo),
		VehicleNo:        in.Value(FieldVehicleNo),
		FromPlace:        in.Value(FieldFromPlace),
		DestinationPlace: in.Value(FieldDestinationPlace),
		InTime:           in.InTime,
		OutTime:          in.OutTime,
		Photo:            photoRef,
		Signature:        signatureRef,
	}
}
