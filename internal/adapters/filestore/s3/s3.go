package s3

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// Config locates a bucket. Endpoint is only needed for S3-compatible
// services such as MinIO.
type Config struct {
	Key      string
	Secret   string
	Region   string
	Bucket   string
	Endpoint string
	Debug    bool
}

// Store keeps assets as objects in one bucket.
type Store struct {
	bucket string
	debug  bool
	client *s3.Client
}

// New connects to the bucket and checks that it exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	}
	if cfg.Key != "" || cfg.Secret != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: couldn't load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	s := NewWithClient(client, cfg.Bucket, cfg.Debug)
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWithClient wraps an already configured client.
func NewWithClient(client *s3.Client, bucket string, debug bool) *Store {
	return &Store{bucket: bucket, debug: debug, client: client}
}

// Ping checks that the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("s3: couldn't head bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(mimeType),
	}
	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("s3: couldn't put object %s: %w", key, err)
	}
	if s.debug {
		js, _ := json.Marshal(out)
		log.Println("s3: put object", key, string(js))
	}
	return nil
}

func (s *Store) Stat(ctx context.Context, key string) (domain.AssetInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return domain.AssetInfo{}, mapErr("head", key, err)
	}
	return domain.AssetInfo{Key: key, Size: aws.ToInt64(out.ContentLength)}, nil
}

// OpenRange fetches exactly the requested window with a Range header, so the
// object is never downloaded whole.
func (s *Store) OpenRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	if length == 0 {
		return io.NopCloser(strings.NewReader("")), nil
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)),
	})
	if err != nil {
		return nil, mapErr("get", key, err)
	}
	return &limitedBody{Reader: io.LimitReader(out.Body, length), body: out.Body}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.Stat(ctx, key); err != nil {
		return err
	}
	out, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3: couldn't delete object %s: %w", key, err)
	}
	if s.debug {
		js, _ := json.Marshal(out)
		log.Println("s3: delete object", key, string(js))
	}
	return nil
}

type limitedBody struct {
	io.Reader
	body io.Closer
}

func (b *limitedBody) Close() error {
	return b.body.Close()
}

func mapErr(op, key string, err error) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	var respErr *awshttp.ResponseError
	if errors.As(err, &noKey) || errors.As(err, &notFound) ||
		(errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound) {
		return fmt.Errorf("s3: %s %s: %w", op, key, domain.ErrNotFound)
	}
	return fmt.Errorf("s3: couldn't %s object %s: %w", op, key, err)
}
