package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Store persists normalized attachments under a relative object key.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
}

const (
	photoDir     = "uploads/member_photos"
	signatureDir = "uploads/signature_photos"
)

// NewObjectKey names a new attachment object: the directory depends on the
// attachment kind ("photo" or "signature"), the file name on the workbook
// plus a random UUID so concurrent uploads never collide.
func NewObjectKey(kind string, workbookID uint64) string {
	dir := photoDir
	if kind == "signature" {
		dir = signatureDir
	}
	return path.Join(dir, fmt.Sprintf("%d_%s.png", workbookID, uuid.NewString()))
}

// LocalStore writes objects below Root on the local filesystem.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) Save(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("media: invalid object key %q", key)
	}
	full := filepath.Join(s.Root, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, full)
}

// GCSStore writes objects to a Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore opens a storage client. credentialsJSON may be empty, in
// which case application default credentials are used.
func NewGCSStore(ctx context.Context, bucket, credentialsJSON string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("media: GCS_BUCKET is required")
	}
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Save(ctx context.Context, key string, data []byte, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
