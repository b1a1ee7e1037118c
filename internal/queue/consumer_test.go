package queue

import (
    "encoding/json"
    "io"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/sirupsen/logrus"
)

func TestConsumerHandle(t *testing.T) {
    dir := t.TempDir()
    l := logrus.New()
    l.SetOutput(io.Discard)
    c := &Consumer{LogDir: dir, Logger: l}

    ev := VisitorRegisteredEvent{
        VisitorID: 5, MemberID: 2, WorkbookID: 3, WorkbookName: "Front desk",
        Name: "Asha", InTime: "20240301 09:30:00", Photo: "uploads/member_photos/3_x.png",
        RegisteredAt: "2024-03-01T09:30:02Z",
    }
    body, _ := json.Marshal(ev)
    for i := 0; i < 2; i++ {
        if err := c.Handle(body); err != nil {
            t.Fatalf("Handle: %v", err)
        }
    }

    data, err := os.ReadFile(filepath.Join(dir, "visitor.log"))
    if err != nil {
        t.Fatal(err)
    }
    lines := strings.Split(strings.TrimSpace(string(data)), "\n")
    if len(lines) != 2 {
        t.Fatalf("lines = %q", lines)
    }
    for _, want := range []string{"visitor_id=5", `workbook="Front desk"`, "photo=true", "signature=false"} {
        if !strings.Contains(lines[0], want) {
            t.Fatalf("line %q lacks %q", lines[0], want)
        }
    }

    if err := c.Handle([]byte("{")); err == nil {
        t.Fatal("malformed body accepted")
    }
    if err := c.Handle([]byte(`{"name":"x"}`)); err == nil {
        t.Fatal("event without id accepted")
    }
}
