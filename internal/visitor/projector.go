package visitor

import (
	"strings"
	"time"
)

// DisplayTimeLayout renders entry/exit times for members, e.g. "09.30 AM".
const DisplayTimeLayout = "03.04 PM"

// Record is the stored state of a visitor as the projector sees it.
type Record struct {
	ID               uint64
	Name             string
	MobileNo         string
	VehicleNo        string
	FromPlace        string
	DestinationPlace string
	InTime           *time.Time
	OutTime          *time.Time
	Photo            string
	Signature        string
}

// Row is one projected visitor: every schema field mapped to its display
// value, or nil when the record has nothing for it.
type Row map[string]any

// Projector renders stored visitors for output.
type Projector struct {
	MediaBaseURL string
}

// NewProjector builds a projector that prefixes media references with baseURL.
func NewProjector(baseURL string) Projector {
	return Projector{MediaBaseURL: baseURL}
}

// Project keeps only the schema fields of each record, in input order.
// Records with no populated schema field are dropped.
func (p Projector) Project(records []Record, schema Schema) []Row {
	fields := SchemaOf(schema.Fields()...).Fields()
	out := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(fields))
		populated := false
		for _, f := range fields {
			v, ok := p.render(rec, f)
			if ok {
				row[string(f)] = v
				populated = true
			} else {
				row[string(f)] = nil
			}
		}
		if populated {
			out = append(out, row)
		}
	}
	return out
}

// ProjectOrFail is Project that reports NoMatchingVisitors on an empty result.
func (p Projector) ProjectOrFail(records []Record, schema Schema) ([]Row, error) {
	rows := p.Project(records, schema)
	if len(rows) == 0 {
		return nil, ErrNoMatchingVisitors()
	}
	return rows, nil
}

func (p Projector) render(rec Record, f Field) (string, bool) {
	switch f {
	case FieldInTime:
		return renderTime(rec.InTime)
	case FieldOutTime:
		return renderTime(rec.OutTime)
	case FieldPhoto:
		return p.mediaURL(rec.Photo)
	case FieldSignature:
		return p.mediaURL(rec.Signature)
	}
	v := strings.TrimSpace(rec.scalar(f))
	return v, v != ""
}

func (p Projector) mediaURL(ref string) (string, bool) {
	u := p.MediaURL(ref)
	return u, u != ""
}

// MediaURL resolves a stored object key against the media base URL.
// Absolute http(s) references are returned unchanged.
func (p Projector) MediaURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return p.MediaBaseURL + ref
}

func renderTime(t *time.Time) (string, bool) {
	if t == nil || t.IsZero() {
		return "", false
	}
	return t.Format(DisplayTimeLayout), true
}

func (r Record) scalar(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldMobileNo:
		return r.MobileNo
	case FieldVehicleNo:
		return r.VehicleNo
	case FieldFromPlace:
		return r.FromPlace
	case FieldDestinationPlace:
		return r.DestinationPlace
	}
	return ""
}
