package proof

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
)

// ErrInvalidImage is returned for empty, oversized or non-image proofs
var ErrInvalidImage = errors.New("invalid proof image")

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Image is a payment receipt screenshot or photo
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

// NewImage sniffs data and rejects anything that is not a supported image or
// is larger than maxBytes
func NewImage(data []byte, filename string, maxBytes int64) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Image{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInvalidImage, len(data), maxBytes)
	}

	contentType := http.DetectContentType(data)
	if _, ok := extensions[contentType]; !ok {
		return Image{}, fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, contentType)
	}

	return Image{
		Data:        data,
		ContentType: contentType,
		Filename:    path.Base(strings.ReplaceAll(filename, "\\", "/")),
	}, nil
}

// Digest is the hex SHA-256 of the image bytes
func (i Image) Digest() string {
	sum := sha256.Sum256(i.Data)
	return hex.EncodeToString(sum[:])
}

// Extension returns the file extension for the sniffed content type
func (i Image) Extension() string {
	if ext, ok := extensions[i.ContentType]; ok {
		return ext
	}
	return "bin"
}

// Key is the content-addressed object key for the image
func (i Image) Key() string {
	return fmt.Sprintf("payment-proofs/sha256/%s.%s", i.Digest(), i.Extension())
}
