package config

import "strings"

// MediaConfig controls where attachments go and how they are addressed.
type MediaConfig struct {
    Provider       string // "local" or "gcs"
    Root           string // local media directory
    BaseURL        string // prefix joined to stored object keys in responses
    MaxDim         int    // bounding box side for stored images
    MaxUploadBytes int64  // per-request multipart limit
    GCSBucket      string
    GCSCredentials string // raw service account JSON, empty for ADC
}

// LoadMediaConfig reads MEDIA_*, ATTACHMENT_MAX_DIM, MAX_UPLOAD_BYTES,
// STORAGE_PROVIDER and GCS_* variables.
func LoadMediaConfig() MediaConfig {
    c := MediaConfig{
        Provider:       strings.ToLower(envStr("STORAGE_PROVIDER", "local")),
        Root:           envStr("MEDIA_ROOT", "./media"),
        BaseURL:        envStr("MEDIA_BASE_URL", "/media/"),
        MaxDim:         envInt("ATTACHMENT_MAX_DIM", 125),
        MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 5<<20)),
        GCSBucket:      envStr("GCS_BUCKET", ""),
        GCSCredentials: envStr("GCS_CREDENTIALS_JSON", ""),
    }
    if c.MaxDim < 1 {
        c.MaxDim = 125
    }
    if c.MaxUploadBytes < 1 {
        c.MaxUploadBytes = 5 << 20
    }
    if !strings.HasSuffix(c.BaseURL, "/") {
        c.BaseURL += "/"
    }
    if c.Provider == "gcs" && envStr("MEDIA_BASE_URL", "") == "" && c.GCSBucket != "" {
        c.BaseURL = "https://storage.googleapis.com/" + c.GCSBucket + "/"
    }
    return c
}
