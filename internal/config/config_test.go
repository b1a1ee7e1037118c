package config

import (
    "bytes"
    "encoding/json"
    "errors"
    "testing"
    "time"

    "github.com/sirupsen/logrus"
)

func TestLoad_SqliteSkipsMySQLVars(t *testing.T) {
    t.Setenv("APP_ENV", "test")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("JWT_SECRET", "s")
    t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
    t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
    t.Setenv("BCRYPT_COST", "4")
    t.Setenv("DB_DRIVER", "sqlite")
    t.Setenv("DB_PATH", "/tmp/x.db")

    c := Load()
    if c.DBDriver != "sqlite" || c.DBPath != "/tmp/x.db" {
        t.Fatalf("driver = %q path = %q", c.DBDriver, c.DBPath)
    }
    if c.PhoneRegion != "IN" || c.EventBroker != "none" || c.AccessTTLMin != 15 {
        t.Fatalf("defaults not applied: %+v", c)
    }
}

func TestLoadMediaConfig(t *testing.T) {
    t.Setenv("MEDIA_BASE_URL", "http://localhost:8080/media")
    t.Setenv("ATTACHMENT_MAX_DIM", "-3")
    c := LoadMediaConfig()
    if c.BaseURL != "http://localhost:8080/media/" {
        t.Fatalf("BaseURL = %q", c.BaseURL)
    }
    if c.MaxDim != 125 || c.Provider != "local" || c.MaxUploadBytes != 5<<20 {
        t.Fatalf("defaults = %+v", c)
    }
}

func TestLoadMediaConfig_GCSBaseURL(t *testing.T) {
    t.Setenv("STORAGE_PROVIDER", "GCS")
    t.Setenv("GCS_BUCKET", "visitors")
    c := LoadMediaConfig()
    if c.Provider != "gcs" || c.BaseURL != "https://storage.googleapis.com/visitors/" {
        t.Fatalf("config = %+v", c)
    }
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")
    c := LoadRateLimitConfig()
    if c.Capacity != 1 {
        t.Fatalf("Capacity = %d", c.Capacity)
    }
    if c.TTL != 10*time.Second {
        t.Fatalf("TTL = %v", c.TTL)
    }
}

func TestLoadCacheConfig(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    c := LoadCacheConfig()
    if !c.Methods["GET"] || !c.Methods["HEAD"] || len(c.Methods) != 2 {
        t.Fatalf("Methods = %v", c.Methods)
    }
}

func TestLogError(t *testing.T) {
    var buf bytes.Buffer
    l := NewLogger("not-a-level")
    l.SetOutput(&buf)
    if l.GetLevel() != logrus.InfoLevel {
        t.Fatalf("level = %v", l.GetLevel())
    }
    LogError(l, "visitors", "Register", "create", map[string]int{"wb_id": 3}, errors.New("boom"))

    var entry map[string]any
    if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
        t.Fatalf("not json: %q", buf.String())
    }
    if entry["msg"] != "boom" || entry["module"] != "visitors" || entry["level"] != "error" {
        t.Fatalf("entry = %v", entry)
    }
}
