package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/visitor-register/internal/database"
	"github.com/iliyamo/visitor-register/internal/model"
	"github.com/iliyamo/visitor-register/internal/visitor"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Options{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := database.Migrate(db, "sqlite"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedMember(t *testing.T, db *sql.DB, email string) model.Member {
	t.Helper()
	m := model.Member{Email: email, PasswordHash: "x", Name: "M"}
	if err := NewMemberRepo(db).Create(context.Background(), &m); err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m
}

func seedType(t *testing.T, db *sql.DB, name string, fields ...visitor.Field) model.WorkbookType {
	t.Helper()
	wt := model.WorkbookType{Type: name, MandatoryFields: visitor.SchemaOf(fields...)}
	if err := NewWorkbookTypeRepo(db).Create(context.Background(), &wt); err != nil {
		t.Fatalf("create type: %v", err)
	}
	return wt
}

func seedWorkbook(t *testing.T, db *sql.DB, memberID, typeID uint64) model.Workbook {
	t.Helper()
	w := model.Workbook{MemberID: memberID, WorkbookTypeID: typeID, Name: "book"}
	if err := NewWorkbookRepo(db).Create(context.Background(), &w); err != nil {
		t.Fatalf("create workbook: %v", err)
	}
	return w
}

func TestMemberRepo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewMemberRepo(db)

	m := seedMember(t, db, "  Alice@Example.com ")
	if m.ID == 0 || m.Role != model.RoleMember || !m.IsActive {
		t.Fatalf("member = %+v", m)
	}
	got, err := repo.GetByEmail(ctx, "alice@example.COM")
	if err != nil || got.ID != m.ID {
		t.Fatalf("GetByEmail = %+v, %v", got, err)
	}
	dup := model.Member{Email: "alice@example.com", PasswordHash: "y", Name: "A"}
	if err := repo.Create(ctx, &dup); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email error = %v", err)
	}
	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("GetByID(999) error = %v", err)
	}
	if err := repo.SetRole(ctx, m.ID, model.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.GetByID(ctx, m.ID); got.Role != model.RoleAdmin {
		t.Fatalf("role = %s", got.Role)
	}
}

func TestTokenRepo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	m := seedMember(t, db, "t@example.com")
	repo := NewTokenRepo(db)

	if err := repo.StoreRefresh(ctx, m.ID, "h1", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := repo.StoreRefresh(ctx, m.ID, "expired", time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if id, err := repo.ValidateRefresh(ctx, "h1"); err != nil || id != m.ID {
		t.Fatalf("ValidateRefresh = %d, %v", id, err)
	}
	if _, err := repo.ValidateRefresh(ctx, "expired"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expired token error = %v", err)
	}
	if err := repo.RevokeAllForMember(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.ValidateRefresh(ctx, "h1"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("revoked token error = %v", err)
	}
}

func TestWorkbookTypeRepo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewWorkbookTypeRepo(db)

	office := seedType(t, db, "Office", visitor.FieldName, visitor.FieldPhoto)
	gate := seedType(t, db, "Gate")

	if err := repo.Create(ctx, &model.WorkbookType{Type: "Office"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate type error = %v", err)
	}

	got, err := repo.GetByID(ctx, gate.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.MandatoryFields.Empty() {
		t.Fatalf("gate schema = %s", got.MandatoryFields)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 2 || list[0].Type != "Office" {
		t.Fatalf("List = %+v, %v", list, err)
	}
	if list[0].MandatoryFields.String() != "name,photo" {
		t.Fatalf("office schema = %s", list[0].MandatoryFields)
	}

	next := visitor.SchemaOf(visitor.FieldMobileNo)
	if err := repo.UpdateMandatoryFields(ctx, office.ID, next); err != nil {
		t.Fatal(err)
	}
	// same value again must not look like a missing row
	if err := repo.UpdateMandatoryFields(ctx, office.ID, next); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.GetByID(ctx, office.ID); !got.MandatoryFields.Equal(next) {
		t.Fatalf("schema = %s", got.MandatoryFields)
	}
	if err := repo.UpdateMandatoryFields(ctx, 404, next); !errors.Is(err, ErrWorkbookTypeNotFound) {
		t.Fatalf("missing type error = %v", err)
	}
	if _, err := repo.GetByID(ctx, 404); !errors.Is(err, ErrWorkbookTypeNotFound) {
		t.Fatalf("GetByID(404) error = %v", err)
	}
}

func TestWorkbookTypeRepo_ConcurrentUpdatesLastWriterWins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewWorkbookTypeRepo(db)
	wt := seedType(t, db, "Parking", visitor.FieldName)

	a := visitor.SchemaOf(visitor.FieldName, visitor.FieldVehicleNo)
	b := visitor.SchemaOf(visitor.FieldMobileNo, visitor.FieldSignature)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, s := range []visitor.Schema{a, b} {
		wg.Add(1)
		go func(s visitor.Schema) {
			defer wg.Done()
			errs <- repo.UpdateMandatoryFields(ctx, wt.ID, s)
		}(s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	got, err := repo.GetByID(ctx, wt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.MandatoryFields.Equal(a) && !got.MandatoryFields.Equal(b) {
		t.Fatalf("final schema %s is neither %s nor %s", got.MandatoryFields, a, b)
	}
}

func TestWorkbookRepo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewWorkbookRepo(db)
	alice := seedMember(t, db, "a@example.com")
	bob := seedMember(t, db, "b@example.com")
	wt := seedType(t, db, "Office", visitor.FieldName)

	w := seedWorkbook(t, db, alice.ID, wt.ID)
	exists, err := repo.ExistsForMemberType(ctx, alice.ID, wt.ID)
	if err != nil || !exists {
		t.Fatalf("ExistsForMemberType = %v, %v", exists, err)
	}
	if exists, _ := repo.ExistsForMemberType(ctx, bob.ID, wt.ID); exists {
		t.Fatal("bob should have no workbook")
	}
	if err := repo.Create(ctx, &model.Workbook{MemberID: alice.ID, WorkbookTypeID: wt.ID, Name: "again"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("second workbook error = %v", err)
	}

	got, err := repo.GetByIDForMember(ctx, w.ID, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != "Office" || got.MandatoryFields.String() != "name" {
		t.Fatalf("workbook = %+v", got)
	}
	if _, err := repo.GetByIDForMember(ctx, w.ID, bob.ID); !errors.Is(err, ErrWorkbookNotFound) {
		t.Fatalf("cross-member lookup error = %v", err)
	}

	list, err := repo.ListByMember(ctx, alice.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByMember = %+v, %v", list, err)
	}
	if list, _ := repo.ListByMember(ctx, bob.ID); len(list) != 0 {
		t.Fatalf("bob list = %+v", list)
	}
}

func ts(s string) *time.Time {
	t, err := visitor.ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestVisitorRepo_CreateListSearch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewVisitorRepo(db)
	alice := seedMember(t, db, "a@example.com")
	bob := seedMember(t, db, "b@example.com")
	wt := seedType(t, db, "Office", visitor.FieldName)
	wt2 := seedType(t, db, "Gate", visitor.FieldName)
	wa := seedWorkbook(t, db, alice.ID, wt.ID)
	wa2 := seedWorkbook(t, db, alice.ID, wt2.ID)
	wb := seedWorkbook(t, db, bob.ID, wt.ID)

	rows := []model.Visitor{
		{MemberID: alice.ID, WorkbookID: wa.ID, Name: "Ravi Kumar", MobileNo: "111", VehicleNo: "KA-01", FromPlace: "Pune",
			InTime: ts("20240101 09:00:00"), OutTime: ts("20240101 10:00:00")},
		{MemberID: alice.ID, WorkbookID: wa.ID, Name: "Rahul", MobileNo: "222", FromPlace: "Mumbai",
			InTime: ts("20240102 09:00:00"), OutTime: ts("20240102 18:00:00")},
		{MemberID: alice.ID, WorkbookID: wa2.ID, Name: "Ravi Shah", MobileNo: "333", DestinationPlace: "Goa"},
		{MemberID: bob.ID, WorkbookID: wb.ID, Name: "Ravi Kumar", MobileNo: "111"},
	}
	for i := range rows {
		if err := repo.Create(ctx, &rows[i]); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	list, err := repo.ListActiveByWorkbook(ctx, alice.ID, wa.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListActiveByWorkbook = %+v, %v", list, err)
	}
	if list[0].Name != "Ravi Kumar" || list[0].InTime == nil || list[0].InTime.Hour() != 9 {
		t.Fatalf("first = %+v", list[0])
	}
	if list[1].OutTime == nil || !list[1].OutTime.Equal(*ts("20240102 18:00:00")) {
		t.Fatalf("out_time = %v", list[1].OutTime)
	}
	if list, _ := repo.ListActiveByWorkbook(ctx, bob.ID, wa.ID); len(list) != 0 {
		t.Fatalf("bob sees alice's workbook: %+v", list)
	}

	tests := []struct {
		name string
		q    VisitorSearchQuery
		want []string
	}{
		{"no criteria", VisitorSearchQuery{MemberID: alice.ID}, []string{"111", "222", "333"}},
		{"name contains", VisitorSearchQuery{MemberID: alice.ID, Name: "ravi"}, []string{"111", "333"}},
		{"mobile exact", VisitorSearchQuery{MemberID: alice.ID, MobileNo: "22"}, nil},
		{"vehicle", VisitorSearchQuery{MemberID: alice.ID, VehicleNo: "KA-01"}, []string{"111"}},
		{"from place", VisitorSearchQuery{MemberID: alice.ID, FromPlace: "Mumbai"}, []string{"222"}},
		{"destination", VisitorSearchQuery{MemberID: alice.ID, DestinationPlace: "Goa"}, []string{"333"}},
		{"workbook", VisitorSearchQuery{MemberID: alice.ID, WorkbookID: wa2.ID}, []string{"333"}},
		{"in_from inclusive", VisitorSearchQuery{MemberID: alice.ID, InFrom: ts("20240102 09:00:00")}, []string{"222"}},
		{"out_to inclusive", VisitorSearchQuery{MemberID: alice.ID, OutTo: ts("20240101 10:00:00")}, []string{"111"}},
		{"conjunction", VisitorSearchQuery{MemberID: alice.ID, Name: "ravi", FromPlace: "Mumbai"}, nil},
		{"member scoped", VisitorSearchQuery{MemberID: bob.ID, Name: "ravi"}, []string{"111"}},
		{"wildcards are literal", VisitorSearchQuery{MemberID: alice.ID, Name: "%"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, tt.q)
			if err != nil {
				t.Fatal(err)
			}
			var mobiles []string
			for _, v := range got {
				if v.MemberID != tt.q.MemberID {
					t.Fatalf("leaked visitor of member %d", v.MemberID)
				}
				mobiles = append(mobiles, v.MobileNo)
			}
			if fmt.Sprint(mobiles) != fmt.Sprint(tt.want) {
				t.Fatalf("got %v, want %v", mobiles, tt.want)
			}
		})
	}
}

func TestVisitorRepo_NamesByPrefix(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewVisitorRepo(db)
	alice := seedMember(t, db, "a@example.com")
	wt := seedType(t, db, "Office", visitor.FieldName)
	w := seedWorkbook(t, db, alice.ID, wt.ID)

	for _, n := range []string{"Sam", "Sara", "Sara", "Sanjay", "Sachin", "Sahil", "Sameer", "Tom"} {
		v := model.Visitor{MemberID: alice.ID, WorkbookID: w.ID, Name: n}
		if err := repo.Create(ctx, &v); err != nil {
			t.Fatal(err)
		}
	}
	names, err := repo.NamesByPrefix(ctx, alice.ID, "sa", 5)
	if err != nil {
		t.Fatal(err)
	}
	want := "[Sachin Sahil Sam Sameer Sanjay]"
	if fmt.Sprint(names) != want {
		t.Fatalf("names = %v, want %s", names, want)
	}
	if names, _ := repo.NamesByPrefix(ctx, alice.ID, "zz", 5); len(names) != 0 {
		t.Fatalf("names = %v", names)
	}

	if _, err := db.Exec(`UPDATE visitors SET is_active = 0 WHERE name = 'Sachin'`); err != nil {
		t.Fatal(err)
	}
	names, err = repo.NamesByPrefix(ctx, alice.ID, "sa", 5)
	if err != nil {
		t.Fatal(err)
	}
	if want := "[Sahil Sam Sameer Sanjay Sara]"; fmt.Sprint(names) != want {
		t.Fatalf("names after deactivation = %v, want %s", names, want)
	}
}

func TestIsDuplicate(t *testing.T) {
	if isDuplicate(nil) || isDuplicate(errors.New("boom")) {
		t.Fatal("false positive")
	}
	if !isDuplicate(errors.New("constraint failed: UNIQUE constraint failed: members.email (2067)")) {
		t.Fatal("sqlite duplicate not detected")
	}
}
