package proof

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextcommerce/storedash/pkg/observability"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngImage(t *testing.T, extra string) Image {
	t.Helper()
	img, err := NewImage(append(append([]byte{}, pngHeader...), extra...), "receipt.png", 0)
	require.NoError(t, err)
	return img
}

type fakeS3 struct {
	mu      sync.Mutex
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	putErr  error
	headErr error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestNewImage(t *testing.T) {
	img, err := NewImage(append([]byte{}, pngHeader...), `C:\Users\me\receipt.png`, 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Extension())
	assert.Equal(t, "receipt.png", img.Filename)

	jpeg, err := NewImage([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "r.jpg", 0)
	require.NoError(t, err)
	assert.Equal(t, "jpg", jpeg.Extension())

	_, err = NewImage(nil, "empty.png", 0)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = NewImage([]byte("%PDF-1.4 not an image"), "receipt.pdf", 0)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = NewImage(append(append([]byte{}, pngHeader...), make([]byte, 100)...), "big.png", 50)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestImage_Key(t *testing.T) {
	a := pngImage(t, "a")
	b := pngImage(t, "b")

	assert.True(t, strings.HasPrefix(a.Key(), "payment-proofs/sha256/"))
	assert.True(t, strings.HasSuffix(a.Key(), ".png"))
	assert.Len(t, a.Digest(), 64)
	assert.Equal(t, a.Key(), pngImage(t, "a").Key())
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestS3Uploader_Upload(t *testing.T) {
	fake := &fakeS3{}
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	u := NewS3Uploader(fake, "proofs", "https://cdn.example.com/", metrics)
	img := pngImage(t, "receipt")

	url, err := u.Upload(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+img.Key(), url)

	require.Len(t, fake.puts, 1)
	put := fake.puts[0]
	assert.Equal(t, "proofs", aws.ToString(put.Bucket))
	assert.Equal(t, img.Key(), aws.ToString(put.Key))
	assert.Equal(t, "image/png", aws.ToString(put.ContentType))
	assert.Equal(t, "receipt.png", put.Metadata["original-filename"])
	assert.Equal(t, img.Data, fake.bodies[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProofUploadsTotal.WithLabelValues("success")))
}

func TestS3Uploader_UploadError(t *testing.T) {
	fake := &fakeS3{putErr: errors.New("access denied")}
	u := NewS3Uploader(fake, "proofs", "https://cdn.example.com", nil)

	_, err := u.Upload(context.Background(), pngImage(t, "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpload)
	assert.Contains(t, err.Error(), "access denied")
}

func TestS3Uploader_Ping(t *testing.T) {
	fake := &fakeS3{}
	u := NewS3Uploader(fake, "proofs", "", nil)
	assert.NoError(t, u.Ping(context.Background()))

	fake.headErr = errors.New("no such bucket")
	assert.Error(t, u.Ping(context.Background()))
}

type countingUploader struct {
	calls atomic.Int32
	err   error
}

func (c *countingUploader) Upload(ctx context.Context, img Image) (string, error) {
	c.calls.Add(1)
	if c.err != nil {
		return "", c.err
	}
	return "https://cdn.example.com/" + img.Key(), nil
}

func TestDedupUploader(t *testing.T) {
	next := &countingUploader{}
	d, err := NewDedupUploader(next, 8, nil)
	require.NoError(t, err)

	img := pngImage(t, "same")
	first, err := d.Upload(context.Background(), img)
	require.NoError(t, err)
	second, err := d.Upload(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.calls.Load())

	_, err = d.Upload(context.Background(), pngImage(t, "other"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestDedupUploader_ErrorsNotCached(t *testing.T) {
	next := &countingUploader{err: ErrUpload}
	d, err := NewDedupUploader(next, 8, nil)
	require.NoError(t, err)

	img := pngImage(t, "flaky")
	_, err = d.Upload(context.Background(), img)
	assert.ErrorIs(t, err, ErrUpload)

	next.err = nil
	url, err := d.Upload(context.Background(), img)
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestNewDedupUploader_InvalidSize(t *testing.T) {
	_, err := NewDedupUploader(&countingUploader{}, 0, nil)
	assert.Error(t, err)
}
