package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"inreader-backend/internal/shared/storage/object"
	"inreader-backend/internal/shared/telemetry"
)

// API is the subset of the S3 client used by Store.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Options configures an S3-compatible store.
type Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Store implements ObjectStore on an S3-compatible bucket.
type Store struct {
	client API
	bucket string
	prefix string
}

// New creates an S3-backed object store. A custom Endpoint switches the
// client to path-style addressing.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, opts.Bucket, opts.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client API, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: normalizePrefix(prefix)}
}

// SupabaseCredentials derives S3 credentials for Supabase Storage from the
// project URL and service key: the project ref is the access key and the
// service key acts as both secret and session token.
func SupabaseCredentials(supabaseURL, serviceKey string) (accessKey, secret, session string) {
	u, err := url.Parse(strings.TrimSpace(supabaseURL))
	if err != nil || u.Host == "" {
		return "", "", ""
	}
	ref, _, _ := strings.Cut(u.Hostname(), ".")
	return ref, serviceKey, serviceKey
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err == nil {
		return nil
	}
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		telemetry.Info("storage.bucket_created", map[string]any{"bucket": s.bucket})
		return nil
	}
	var owned *s3types.BucketAlreadyOwnedByYou
	var exists *s3types.BucketAlreadyExists
	if errors.As(err, &owned) || errors.As(err, &exists) {
		return nil
	}
	return fmt.Errorf("s3 create bucket %s: %w", s.bucket, err)
}

// Save uploads data to key.
func (s *Store) Save(ctx context.Context, key string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	objectKey := applyPrefix(s.prefix, key)
	counter := &countingReader{r: r}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        counter,
		ContentType: aws.String(contentType),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return counter.n, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objectKey := applyPrefix(s.prefix, key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", object.ErrNotFound, key)
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

// Delete removes the object at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	objectKey := applyPrefix(s.prefix, key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noKey *s3types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ object.ObjectStore = (*Store)(nil)
