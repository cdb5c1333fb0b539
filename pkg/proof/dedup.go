package proof

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/nextcommerce/storedash/pkg/observability"
)

// DedupUploader remembers recently uploaded digests so a re-selected receipt
// is not stored twice. Concurrent uploads of the same image share one call.
type DedupUploader struct {
	next    Uploader
	cache   *lru.Cache[string, string]
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewDedupUploader wraps next with an LRU of size entries. metrics may be nil.
func NewDedupUploader(next Uploader, size int, metrics *observability.Metrics) (*DedupUploader, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &DedupUploader{next: next, cache: cache, metrics: metrics}, nil
}

// Upload implements Uploader
func (d *DedupUploader) Upload(ctx context.Context, img Image) (string, error) {
	digest := img.Digest()
	if url, ok := d.cache.Get(digest); ok {
		if d.metrics != nil {
			d.metrics.ProofUploadsTotal.WithLabelValues("dedup").Inc()
		}
		return url, nil
	}

	v, err, _ := d.group.Do(digest, func() (interface{}, error) {
		url, err := d.next.Upload(ctx, img)
		if err != nil {
			return "", err
		}
		d.cache.Add(digest, url)
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
