package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type S3Config struct {
	Region          string
	ImagesBucket    string
	DocumentsBucket string
	AccessKeyID     string
	SecretAccessKey string
	// CDNBaseURL fronts the images bucket, e.g. https://cdn.example.com/media.
	CDNBaseURL string
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Store struct {
	client    s3API
	cfg       S3Config
	cdnHost   string
	cdnPrefix string
}

// NewS3Store builds the client once; it is shared by every request.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return newS3Store(s3.NewFromConfig(awsCfg), cfg)
}

func newS3Store(client s3API, cfg S3Config) (*S3Store, error) {
	s := &S3Store{client: client, cfg: cfg}
	if cfg.CDNBaseURL != "" {
		u, err := url.Parse(cfg.CDNBaseURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid CDN base url %q", cfg.CDNBaseURL)
		}
		s.cdnHost = strings.ToLower(u.Hostname())
		s.cdnPrefix = strings.Trim(u.Path, "/")
	}
	return s, nil
}

func (s *S3Store) bucket(kind Kind) string {
	if kind == KindDocuments {
		return s.cfg.DocumentsBucket
	}
	return s.cfg.ImagesBucket
}

func (s *S3Store) Put(ctx context.Context, kind Kind, key string, body io.Reader, contentType string) (string, error) {
	bucket := s.bucket(kind)
	if bucket == "" {
		return "", ErrNotConfigured
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "put %s/%s", bucket, key)
	}
	return s.publicURL(kind, key), nil
}

func (s *S3Store) publicURL(kind Kind, key string) string {
	if kind == KindImages && s.cdnHost != "" {
		return strings.TrimRight(s.cfg.CDNBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket(kind), s.cfg.Region, key)
}

func (s *S3Store) Delete(ctx context.Context, rawURL string) (bool, error) {
	bucket, key, ok := s.locate(rawURL)
	if !ok {
		return false, nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, errors.Wrapf(err, "delete %s/%s", bucket, key)
	}
	return true, nil
}

// locate maps a public URL back to (bucket, key). Only the CDN host and the
// direct hostnames of the configured buckets are recognised.
func (s *S3Store) locate(rawURL string) (string, string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", "", false
	}
	host := strings.ToLower(u.Hostname())
	path := strings.TrimPrefix(u.Path, "/")

	if s.cdnHost != "" && host == s.cdnHost && s.cfg.ImagesBucket != "" {
		if s.cdnPrefix != "" {
			if !strings.HasPrefix(path, s.cdnPrefix+"/") {
				return "", "", false
			}
			path = strings.TrimPrefix(path, s.cdnPrefix+"/")
		}
		return s.cfg.ImagesBucket, path, path != ""
	}
	for _, b := range []string{s.cfg.ImagesBucket, s.cfg.DocumentsBucket} {
		if b == "" {
			continue
		}
		if host == b+".s3."+s.cfg.Region+".amazonaws.com" || host == b+".s3.amazonaws.com" {
			return b, path, path != ""
		}
	}
	return "", "", false
}
