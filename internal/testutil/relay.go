package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/dom/videotube-backend/internal/media"
)

// FakeRelay stands in for the remote asset host. It removes the local file
// like the real relay and hands back a predictable URL.
type FakeRelay struct {
	mu      sync.Mutex
	uploads []string
	// Fail, when set, is consulted before each upload.
	Fail func(localPath string) error
}

func NewFakeRelay() *FakeRelay {
	return &FakeRelay{}
}

func (f *FakeRelay) Upload(_ context.Context, localPath string) (*media.Asset, error) {
	if localPath == "" {
		return nil, nil
	}
	defer os.Remove(localPath)

	if f.Fail != nil {
		if err := f.Fail(localPath); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	f.uploads = append(f.uploads, localPath)
	f.mu.Unlock()

	key := "image/" + filepath.Base(localPath)
	return &media.Asset{URL: "https://cdn.test/" + key, Key: key, ContentType: "image/png"}, nil
}

// Uploads returns the local paths uploaded so far
func (f *FakeRelay) Uploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}
