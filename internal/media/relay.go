// Package media forwards locally staged uploads to the remote asset host.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dom/videotube-backend/internal/config"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("media host not configured")

// Asset is a file stored on the remote host.
type Asset struct {
	URL         string
	Key         string
	ContentType string
	Size        int64
}

// Relay uploads a staged file and removes it locally whatever the outcome.
// An empty path yields (nil, nil): no media was provided.
type Relay interface {
	Upload(ctx context.Context, localPath string) (*Asset, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Relay struct {
	client  objectPutter
	bucket  string
	baseURL string
	now     func() time.Time
}

func NewS3Relay(ctx context.Context, cfg *config.Config) (*S3Relay, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Relay(client, cfg), nil
}

func newS3Relay(client objectPutter, cfg *config.Config) *S3Relay {
	return &S3Relay{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: publicBaseURL(cfg),
		now:     time.Now,
	}
}

func (r *S3Relay) Upload(ctx context.Context, localPath string) (*Asset, error) {
	if localPath == "" {
		return nil, nil
	}
	defer os.Remove(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("opening staged file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat staged file: %w", err)
	}

	contentType, err := sniffContentType(f)
	if err != nil {
		return nil, err
	}

	key := r.objectKey(contentType, filepath.Ext(localPath))
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", key, err)
	}

	return &Asset{
		URL:         r.baseURL + "/" + key,
		Key:         key,
		ContentType: contentType,
		Size:        info.Size(),
	}, nil
}

// objectKey files uploads under their detected resource type and upload date.
func (r *S3Relay) objectKey(contentType, ext string) string {
	d := r.now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s", resourceType(contentType), d.Year(), d.Month(), d.Day(), uuid.New(), strings.ToLower(ext))
}

func sniffContentType(f *os.File) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("reading staged file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding staged file: %w", err)
	}
	return http.DetectContentType(head[:n]), nil
}

func resourceType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"), strings.HasPrefix(contentType, "audio/"):
		return "video"
	default:
		return "raw"
	}
}

func publicBaseURL(cfg *config.Config) string {
	switch {
	case cfg.S3PublicURL != "":
		return strings.TrimRight(cfg.S3PublicURL, "/")
	case cfg.S3Endpoint != "":
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
}

// UnavailableRelay is used when no asset host is configured. It still
// discards staged files.
type UnavailableRelay struct{}

func (UnavailableRelay) Upload(_ context.Context, localPath string) (*Asset, error) {
	if localPath == "" {
		return nil, nil
	}
	_ = os.Remove(localPath)
	return nil, ErrNotConfigured
}
