package storage

import (
	"context"
	"io"
)

// ImageStore persists uploaded image blobs. Save returns the value recorded
// in the school row: the object name relative to the public image route.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, data io.Reader) (string, error)
}
