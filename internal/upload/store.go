package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Store saves an uploaded object under key and returns the URL clients use
// to fetch it.
type Store interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
}

// DiskStore writes files below dir. They are served from /uploads/.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, publicBaseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (d *DiskStore) Dir() string { return d.dir }

func (d *DiskStore) Put(_ context.Context, key string, body io.ReadSeeker, _ string) (string, error) {
	dst := filepath.Join(d.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return d.baseURL + path.Join("/uploads", key), nil
}

// objectPutter is the part of *s3.S3 the store needs.
type objectPutter interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client  objectPutter
	bucket  string
	baseURL string
}

// NewS3Store builds a store on the default AWS credential chain. Without a
// public base URL objects are addressed on the bucket's virtual host.
func NewS3Store(region, bucket, publicBaseURL string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return newS3Store(s3.New(sess), bucket, publicBaseURL), nil
}

func newS3Store(client objectPutter, bucket, publicBaseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *S3Store) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3 object %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}
