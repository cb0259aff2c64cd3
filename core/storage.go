package core

import (
	"context"
	"io"
)

// ObjectStorage stores binary objects and hands back a publicly resolvable URL.
type ObjectStorage interface {
	// Upload stores r under key and returns its retrieval URL once the upload completed.
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
