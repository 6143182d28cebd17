package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/talenthub/go-hr-backend/internal/config"
	"github.com/talenthub/go-hr-backend/internal/domain"
)

// signedURLTTL bounds the validity of presigned staging URLs. It matches the
// staged-upload expiry so the URL never outlives the token.
const signedURLTTL = time.Hour

// S3Store keeps resume blobs in an S3 (or S3-compatible) bucket. Staged
// objects are addressed with presigned GET URLs; promoted objects get a
// stable public URL.
type S3Store struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	region   string
	endpoint string
}

// NewS3Store builds the client from StorageConfig. Static credentials are
// used when provided, otherwise the default AWS credential chain applies.
// A custom endpoint switches to path-style addressing for S3-compatible
// stores (MinIO and friends).
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
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
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:   client,
		presign:  s3.NewPresignClient(client),
		bucket:   cfg.S3Bucket,
		region:   cfg.S3Region,
		endpoint: cfg.S3Endpoint,
	}, nil
}

// Stage uploads r to temp_resumes/{fileID}/{filename} and mints a presigned
// GET URL valid for one hour.
func (s *S3Store) Stage(ctx context.Context, r io.Reader, fileID, filename, contentType string) (Staged, error) {
	key := tempKey(fileID, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"file_id": fileID,
		},
	})
	if err != nil {
		return Staged{}, fmt.Errorf("s3 stage: %w", err)
	}

	signed, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(signedURLTTL))
	if err != nil {
		return Staged{}, fmt.Errorf("s3 presign: %w", err)
	}

	return Staged{
		Descriptor: Descriptor{Kind: domain.StorageS3, Key: key, Filename: filename},
		URL:        signed.URL,
	}, nil
}

// Promote server-side copies the staged object to resumes/{ownerID}/ and
// deletes the staged copy. Re-running the copy with the same source and
// destination is idempotent, so a retry after a transient delete failure
// cannot corrupt state.
func (s *S3Store) Promote(ctx context.Context, d Descriptor, ownerID string) (Promoted, error) {
	newKey := permanentKey(ownerID, d.Filename)

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(url.PathEscape(s.bucket + "/" + d.Key)),
		Key:        aws.String(newKey),
	})
	if err != nil {
		return Promoted{}, fmt.Errorf("s3 copy: %w", err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(d.Key),
	}); err != nil {
		// Permanent copy exists; the orphaned temp object is cleanup, not failure.
		log.Warn().Err(err).Str("key", d.Key).Msg("storage: delete staged object after promote")
	}

	return Promoted{
		Descriptor: Descriptor{Kind: domain.StorageS3, Key: newKey, Filename: d.Filename},
		URL:        s.publicURL(newKey),
	}, nil
}

// Discard deletes an object, logging (never returning) failures.
func (s *S3Store) Discard(ctx context.Context, d Descriptor) {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(d.Key),
	}); err != nil {
		log.Warn().Err(err).Str("key", d.Key).Msg("storage: discard failed")
	}
}

// Open streams the promoted object.
func (s *S3Store) Open(ctx context.Context, ownerID, filename string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(permanentKey(ownerID, filename)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

// publicURL builds the stable URL of a promoted object. With a custom
// endpoint the path-style form is used; otherwise the virtual-hosted AWS
// form.
func (s *S3Store) publicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
