package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/kmajority/blobstore"
)

// Client is the slice of the S3 API the store needs. *s3.Client satisfies it.
type Client interface {
	manager.UploadAPIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

var _ blobstore.Store = (*Store)(nil)

// Store keeps vocabularies as objects under a key prefix in one bucket.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	partSize int64
	uploader *manager.Uploader
}

// NewStore wraps an S3 client. Every blob name is joined onto prefix.
func NewStore(client Client, bucket, prefix string, optFns ...func(*UploadConfig)) *Store {
	up := DefaultUploadConfig()
	for _, fn := range optFns {
		fn(&up)
	}

	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		partSize: up.PartSize,
		uploader: up.uploader(client),
	}
}

// NewStoreFromConfig resolves credentials and region through the default
// AWS chain and returns a Store backed by a fresh *s3.Client.
func NewStoreFromConfig(ctx context.Context, bucket, prefix string, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	return NewStore(s3.NewFromConfig(awsCfg), bucket, prefix), nil
}

// Open issues a HEAD for the object size. Reads are fetched lazily with
// ranged GETs.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.objectKey(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translate(err)
	}

	return &objectBlob{
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
	}, nil
}

// Put uploads a blob in one checksummed request when it is smaller than the
// configured part size and through the multipart uploader otherwise.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.objectKey(name)

	if int64(len(data)) >= s.partSize {
		return s.putMultipart(ctx, key, data)
	}

	return s.putSingle(ctx, key, data)
}

// Delete removes a blob. Deleting a missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(name)),
	})
	if isNotFound(err) {
		return nil
	}

	return err
}

// List pages through every object under prefix and returns their names
// relative to the store prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.objectKey(prefix)),
	})

	var names []string

	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Contents {
			if name := s.blobName(aws.ToString(obj.Key)); name != "" {
				names = append(names, name)
			}
		}
	}

	slices.Sort(names)

	return names, nil
}

func (s *Store) objectKey(name string) string {
	return path.Join(s.prefix, name)
}

func (s *Store) blobName(key string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, s.prefix), "/")
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}

	var (
		nf  *types.NotFound
		nsk *types.NoSuchKey
	)

	return errors.As(err, &nf) || errors.As(err, &nsk)
}

func translate(err error) error {
	if isNotFound(err) {
		return blobstore.ErrNotFound
	}

	return err
}
