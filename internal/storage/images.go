package storage

import (
	"context"
	"io"

	"wardrobe/internal/apperr"
	"wardrobe/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the slice of the S3 client the image store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ImageStore keeps clothing images in a bucket, keyed by the clothing
// item's identifier and encrypted at rest.
type ImageStore struct {
	client S3API
	bucket string
}

func NewImageStore(client S3API, bucket string) *ImageStore {
	return &ImageStore{client: client, bucket: bucket}
}

// PutImage streams an uploaded image to the bucket under key, propagating
// the upload's content type.
func (s *ImageStore) PutImage(ctx context.Context, key, contentType string, body io.Reader) error {
	if key == "" {
		return apperr.Undefined("Image key")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 body,
		ContentType:          aws.String(contentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return apperr.ErrServer.WithCause(err)
	}

	logger.Debug("Image stored", "key", key, "content_type", contentType)
	return nil
}

// GetImage returns the stored image body and its content type. The caller
// closes the body.
func (s *ImageStore) GetImage(ctx context.Context, key string) (io.ReadCloser, string, int64, error) {
	if key == "" {
		return nil, "", 0, apperr.Undefined("Image key")
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", 0, apperr.ErrServer.WithCause(err)
	}

	contentType := aws.ToString(out.ContentType)
	length := aws.ToInt64(out.ContentLength)
	return out.Body, contentType, length, nil
}
