package visitor

import (
	"testing"
	"time"
)

func TestProject_KeepsOnlySchemaFields(t *testing.T) {
	in := time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC)
	rec := Record{Name: "Eve", MobileNo: "123", VehicleNo: "MH-12", InTime: &in, Photo: "uploads/member_photos/a.png"}
	p := NewProjector("https://cdn.example.com/media/")

	rows := p.Project([]Record{rec}, SchemaOf(FieldName, FieldInTime, FieldPhoto, FieldSignature))
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	row := rows[0]
	if len(row) != 4 {
		t.Fatalf("row has %d keys: %v", len(row), row)
	}
	if row["name"] != "Eve" {
		t.Fatalf("name = %v", row["name"])
	}
	if row["in_time"] != "02.05 PM" {
		t.Fatalf("in_time = %v", row["in_time"])
	}
	if row["photo"] != "https://cdn.example.com/media/uploads/member_photos/a.png" {
		t.Fatalf("photo = %v", row["photo"])
	}
	if row["signature"] != nil {
		t.Fatalf("signature = %v, want nil", row["signature"])
	}
	if _, ok := row["mobile_no"]; ok {
		t.Fatal("mobile_no leaked into projection")
	}
}

func TestProject_DropsEmptyRowsAndKeepsOrder(t *testing.T) {
	schema := SchemaOf(FieldName, FieldVehicleNo)
	records := []Record{
		{ID: 1, Name: "first"},
		{ID: 2, MobileNo: "only-mobile"},
		{ID: 3, VehicleNo: "KA-02"},
	}
	rows := NewProjector("").Project(records, schema)
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0]["name"] != "first" || rows[1]["vehicle_no"] != "KA-02" {
		t.Fatalf("rows out of order: %v", rows)
	}
}

func TestProjectOrFail_NoMatchingVisitors(t *testing.T) {
	_, err := NewProjector("").ProjectOrFail([]Record{{MobileNo: "1"}}, SchemaOf(FieldName))
	if !IsKind(err, KindNoMatchingVisitors) {
		t.Fatalf("error = %v", err)
	}
	ve, _ := AsError(err)
	if ve.Code() != CodeNoVisitorExit {
		t.Fatalf("code = %v", ve.Code())
	}
}

func TestIntakeProjectionRoundTrip(t *testing.T) {
	schema := SchemaOf(FieldName, FieldMobileNo, FieldFromPlace, FieldInTime, FieldPhoto)
	payload := FieldMap{
		FieldName:      "Frank",
		FieldMobileNo:  "999",
		FieldFromPlace: "Pune",
		FieldInTime:    "20240102 08:00:00",
	}
	in, err := ValidateIntake(schema, payload, Attachments{FieldPhoto: []byte("png")})
	if err != nil {
		t.Fatalf("ValidateIntake error: %v", err)
	}
	rows := NewProjector("/media/").Project([]Record{in.Record("uploads/member_photos/x.png", "")}, schema)
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	for _, f := range schema.Fields() {
		if rows[0][string(f)] == nil {
			t.Fatalf("field %s lost in round trip", f)
		}
	}
	for _, f := range []Field{FieldName, FieldMobileNo, FieldFromPlace} {
		if rows[0][string(f)] != payload[f] {
			t.Fatalf("%s = %v, want %v", f, rows[0][string(f)], payload[f])
		}
	}
	if rows[0]["in_time"] != "08.00 AM" {
		t.Fatalf("in_time = %v", rows[0]["in_time"])
	}
}

func TestMediaURL(t *testing.T) {
	p := NewProjector("/media/")
	cases := map[string]string{
		"":                           "",
		"uploads/icons/gate.png":     "/media/uploads/icons/gate.png",
		"https://cdn.example.com/x":  "https://cdn.example.com/x",
	}
	for in, want := range cases {
		if got := p.MediaURL(in); got != want {
			t.Fatalf("MediaURL(%q) = %q, want %q", in, got, want)
		}
	}
}
