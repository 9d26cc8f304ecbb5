package s3

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/kmajority/internal/hash"
)

const contentType = "application/octet-stream"

// UploadConfig tunes how vocabularies are written.
type UploadConfig struct {
	// PartSize is the multipart threshold and part size in bytes (default 8 MiB).
	PartSize int64

	// Concurrency bounds parallel part uploads (default 5).
	Concurrency int

	// LeavePartsOnError keeps parts of a failed multipart upload instead of
	// aborting it.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the settings NewStore starts from.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:    8 << 20,
		Concurrency: 5,
	}
}

func (c UploadConfig) uploader(client Client) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = c.PartSize
		u.Concurrency = c.Concurrency
		u.LeavePartsOnError = c.LeavePartsOnError
	})
}

// putSingle sends the precomputed CRC32C so S3 rejects a corrupted body.
func (s *Store) putSingle(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(s.bucket),
		Key:            aws.String(key),
		Body:           bytes.NewReader(data),
		ContentLength:  aws.Int64(int64(len(data))),
		ContentType:    aws.String(contentType),
		ChecksumCRC32C: aws.String(hash.CRC32CBase64(data)),
	})

	return err
}

func (s *Store) putMultipart(ctx context.Context, key string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(s.bucket),
		Key:               aws.String(key),
		Body:              bytes.NewReader(data),
		ContentType:       aws.String(contentType),
		ChecksumAlgorithm: types.ChecksumAlgorithmCrc32c,
	})

	return err
}
