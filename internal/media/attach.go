package media

import (
	"context"
	"errors"

	"github.com/iliyamo/visitor-register/internal/visitor"
)

// Attacher normalizes an uploaded attachment and stores it.
type Attacher struct {
	Store  Store
	MaxDim int
}

func NewAttacher(store Store, maxDim int) *Attacher {
	return &Attacher{Store: store, MaxDim: maxDim}
}

// Attach returns the object key of the stored image. Undecodable input is
// reported as UnreadableImage and nothing is written.
func (a *Attacher) Attach(ctx context.Context, field visitor.Field, workbookID uint64, raw []byte) (string, error) {
	if !field.IsAttachment() {
		return "", errors.New("media: not an attachment field: " + field.String())
	}
	data, err := Normalize(raw, a.MaxDim)
	if err != nil {
		return "", visitor.ErrUnreadableImage(field, err)
	}
	key := NewObjectKey(field.String(), workbookID)
	if err := a.Store.Save(ctx, key, data, "image/png"); err != nil {
		return "", visitor.ErrPersistence("", err)
	}
	return key, nil
}
