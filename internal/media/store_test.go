package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iliyamo/visitor-register/internal/visitor"
)

func TestNewObjectKey(t *testing.T) {
	a := NewObjectKey("photo", 12)
	b := NewObjectKey("photo", 12)
	if a == b {
		t.Fatalf("keys collide: %s", a)
	}
	if !strings.HasPrefix(a, "uploads/member_photos/12_") || !strings.HasSuffix(a, ".png") {
		t.Fatalf("photo key = %s", a)
	}
	if s := NewObjectKey("signature", 3); !strings.HasPrefix(s, "uploads/signature_photos/3_") {
		t.Fatalf("signature key = %s", s)
	}
}

func TestLocalStore_Save(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root)
	if err := s.Save(context.Background(), "uploads/member_photos/a.png", []byte("x"), "image/png"); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "uploads", "member_photos", "a.png"))
	if err != nil || string(got) != "x" {
		t.Fatalf("read back %q, %v", got, err)
	}
	if err := s.Save(context.Background(), "../escape.png", []byte("x"), ""); err == nil {
		t.Fatal("expected error for key outside root")
	}
}

func TestAttacher_Attach(t *testing.T) {
	root := t.TempDir()
	a := NewAttacher(NewLocalStore(root), 125)

	key, err := a.Attach(context.Background(), visitor.FieldSignature, 9, encodePNG(t, 500, 100))
	if err != nil {
		t.Fatalf("Attach error: %v", err)
	}
	if !strings.HasPrefix(key, "uploads/signature_photos/9_") {
		t.Fatalf("key = %s", key)
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if w, h := decodedSize(t, data); w != 125 || h != 25 {
		t.Fatalf("stored size = %dx%d", w, h)
	}
}

func TestAttacher_UnreadableImageWritesNothing(t *testing.T) {
	root := t.TempDir()
	a := NewAttacher(NewLocalStore(root), 125)

	_, err := a.Attach(context.Background(), visitor.FieldPhoto, 1, []byte("GIF89a-broken"))
	ve, ok := visitor.AsError(err)
	if !ok || ve.Kind != visitor.KindUnreadableImage || ve.Field != visitor.FieldPhoto {
		t.Fatalf("error = %v, want UnreadableImage(photo)", err)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Fatalf("root not empty: %v", entries)
	}
}
