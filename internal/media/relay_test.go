package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dom/videotube-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakePutter struct {
	err         error
	bucket      string
	key         string
	contentType string
	body        []byte
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = *in.Bucket
	f.key = *in.Key
	f.contentType = *in.ContentType
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testRelay(putter objectPutter) *S3Relay {
	r := newS3Relay(putter, &config.Config{
		S3Bucket:    "videotube",
		S3PublicURL: "https://cdn.example.com/",
	})
	r.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestS3Relay_Upload(t *testing.T) {
	putter := &fakePutter{}
	relay := testRelay(putter)
	path := writeTemp(t, "avatar-1.PNG", pngHeader)

	asset, err := relay.Upload(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, asset)

	assert.Equal(t, "videotube", putter.bucket)
	assert.Equal(t, "image/png", putter.contentType)
	assert.Equal(t, pngHeader, putter.body)
	assert.True(t, strings.HasPrefix(putter.key, "image/2026/10/16/"), putter.key)
	assert.True(t, strings.HasSuffix(putter.key, ".png"), putter.key)
	assert.Equal(t, "https://cdn.example.com/"+putter.key, asset.URL)
	assert.Equal(t, int64(len(pngHeader)), asset.Size)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "staged file should be removed")
}

func TestS3Relay_UploadFailureRemovesFile(t *testing.T) {
	relay := testRelay(&fakePutter{err: errors.New("access denied")})
	path := writeTemp(t, "cover.txt", []byte("plain text"))

	asset, err := relay.Upload(context.Background(), path)
	assert.Error(t, err)
	assert.Nil(t, asset)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "staged file should be removed")
}

func TestS3Relay_EmptyPath(t *testing.T) {
	relay := testRelay(&fakePutter{})

	asset, err := relay.Upload(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, asset)
}

func TestS3Relay_MissingFile(t *testing.T) {
	relay := testRelay(&fakePutter{})

	_, err := relay.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	assert.Error(t, err)
}

func TestResourceType(t *testing.T) {
	assert.Equal(t, "image", resourceType("image/jpeg"))
	assert.Equal(t, "video", resourceType("video/mp4"))
	assert.Equal(t, "raw", resourceType("application/octet-stream"))
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "explicit public url",
			cfg:  config.Config{S3Bucket: "b", S3PublicURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com",
		},
		{
			name: "custom endpoint",
			cfg:  config.Config{S3Bucket: "b", S3Endpoint: "http://minio:9000"},
			want: "http://minio:9000/b",
		},
		{
			name: "aws default",
			cfg:  config.Config{S3Bucket: "b", S3Region: "eu-west-1"},
			want: "https://b.s3.eu-west-1.amazonaws.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBaseURL(&tt.cfg))
		})
	}
}

func TestUnavailableRelay(t *testing.T) {
	path := writeTemp(t, "avatar.png", pngHeader)

	asset, err := UnavailableRelay{}.Upload(context.Background(), path)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, asset)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStage(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("avatar", "me.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	dir := filepath.Join(t.TempDir(), "temp")
	path, err := Stage(dir, "avatar", form.File["avatar"][0])
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "avatar-"))
	assert.Equal(t, ".jpg", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	Discard(path, "")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
