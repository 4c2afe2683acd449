package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS, set for MinIO/R2 and friends
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from
}

// ObjectStore is the write side of a bucket.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	URL(key string) string
}

type S3Store struct {
	client *s3.Client
	cfg    S3Config
}

func NewS3Store(cfg S3Config) *S3Store {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return &S3Store{client: s3.New(opts), cfg: cfg}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) URL(key string) string {
	base := s.cfg.PublicURL
	if base == "" {
		if s.cfg.Endpoint != "" {
			base = strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.Bucket, s.cfg.Region)
		}
	}
	return strings.TrimRight(base, "/") + "/" + key
}

// Uploader converts and stores images, returning their public URL.
type Uploader struct {
	encoder Encoder
	store   ObjectStore
}

// NewUploader returns an uploader; a nil store disables uploads.
func NewUploader(encoder Encoder, store ObjectStore) *Uploader {
	return &Uploader{encoder: encoder, store: store}
}

func (u *Uploader) Enabled() bool { return u != nil && u.store != nil }

// Upload stores r under folder/<uuid>.webp.
func (u *Uploader) Upload(ctx context.Context, folder string, r io.Reader) (string, error) {
	if !u.Enabled() {
		return "", ErrUploadDisabled
	}

	body, err := u.encoder.Encode(r)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.webp", strings.Trim(folder, "/"), uuid.NewString())
	if err := u.store.Put(ctx, key, ContentType, body); err != nil {
		return "", err
	}
	return u.store.URL(key), nil
}
