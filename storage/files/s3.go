package filestore

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
)

const (
	keyPrefix   = "uploads/"
	metaName    = "name"
	metaCreated = "created-at"
)

// ObjectAPI is the part of the S3 client used by S3Storage.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Storage struct {
	client        ObjectAPI
	bucket        string
	publicBaseURL string
}

var _ core.FileStorage = (*S3Storage)(nil)

// NewS3Storage loads the AWS credentials from the environment.
func NewS3Storage(ctx context.Context, conf core.StorageConfig) (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(conf.Region))
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}
	return NewS3StorageWithClient(s3.NewFromConfig(cfg), conf.Bucket, conf.PublicBaseURL), nil
}

func NewS3StorageWithClient(client ObjectAPI, bucket, publicBaseURL string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *S3Storage) url(key string) string {
	if s.publicBaseURL == "" {
		return ""
	}
	return s.publicBaseURL + "/" + key
}

func (s *S3Storage) Save(ctx context.Context, f core.File, r io.Reader) (core.File, error) {
	f.ID = uuid.New().String()
	f.CreatedAt = core.NowFunc().UTC()

	body, err := io.ReadAll(r)
	if err != nil {
		return core.File{}, errors.Wrap(err, "reading upload")
	}
	f.Size = int64(len(body))

	key := keyPrefix + f.ID
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(f.Size),
		Metadata: map[string]string{
			metaName:    url.QueryEscape(f.Name),
			metaCreated: f.CreatedAt.Format(timeLayout),
		},
	})
	if err != nil {
		return core.File{}, errors.Wrap(err, "uploading to S3")
	}
	f.URL = s.url(key)
	return f, nil
}

func (s *S3Storage) Open(ctx context.Context, id string) (core.File, io.ReadCloser, error) {
	if _, err := uuid.Parse(id); err != nil {
		return core.File{}, nil, core.ErrFileNotFound
	}

	key := keyPrefix + id
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return core.File{}, nil, core.ErrFileNotFound
		}
		return core.File{}, nil, errors.Wrap(err, "downloading from S3")
	}

	f := core.File{ID: id, ContentType: aws.ToString(out.ContentType), Size: aws.ToInt64(out.ContentLength), URL: s.url(key)}
	if name, err := url.QueryUnescape(out.Metadata[metaName]); err == nil {
		f.Name = name
	}
	f.CreatedAt, _ = parseTime(out.Metadata[metaCreated])
	return f, out.Body, nil
}

func (s *S3Storage) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return core.ErrFileNotFound
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(keyPrefix + id)})
	return errors.Wrap(err, "deleting from S3")
}
