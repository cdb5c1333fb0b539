package proof

import (
	"context"
	"errors"
)

// ErrUpload wraps every failure to store a proof
var ErrUpload = errors.New("proof upload failed")

// Uploader stores a proof image and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, img Image) (string, error)
}
