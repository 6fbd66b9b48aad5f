// Package blob stores uploaded assets (event posters, organizer logos and
// registration documents) in S3-compatible object storage.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/portal-acara/server/internal/config"
)

const (
	// MaxUploadSize caps multipart uploads (5MB).
	MaxUploadSize = 5 * 1024 * 1024

	FolderPosters   = "posters"
	FolderLogos     = "logos"
	FolderDocuments = "documents"
)

// Allowed MIME types per upload kind.
var (
	AllowedImageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	}
	AllowedDocumentTypes = map[string]string{
		"application/pdf": ".pdf",
	}
)

// S3 wraps the AWS client with bucket and key conventions.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	logger   zerolog.Logger
}

// NewS3 builds a client from static credentials when configured, falling
// back to the default AWS credential chain.
func NewS3(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	} else {
		logger.Warn().Msg("S3 using default credential chain")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client)
	return &S3{
		client:   client,
		uploader: uploader,
		bucket:   cfg.Bucket,
		logger:   logger.With().Str("component", "blob").Logger(),
	}, nil
}

// ValidImageType reports whether the content type is an accepted image.
func ValidImageType(contentType string) bool {
	_, ok := AllowedImageTypes[strings.ToLower(contentType)]
	return ok
}

// ValidDocumentType reports whether the content type is an accepted document.
func ValidDocumentType(contentType string) bool {
	_, ok := AllowedDocumentTypes[strings.ToLower(contentType)]
	return ok
}

// PosterKey returns the object key for an event poster: posters/{event_id}{ext}.
func PosterKey(eventID, contentType string) string {
	return path.Join(FolderPosters, eventID+AllowedImageTypes[strings.ToLower(contentType)])
}

// LogoKey returns the object key for an organizer logo: logos/{organizer_id}{ext}.
func LogoKey(organizerID, contentType string) string {
	return path.Join(FolderLogos, organizerID+AllowedImageTypes[strings.ToLower(contentType)])
}

// DocumentKey returns the object key for a registration document:
// documents/{organizer_id}.pdf.
func DocumentKey(organizerID string) string {
	return path.Join(FolderDocuments, organizerID+".pdf")
}

// Upload streams body to the bucket under key.
func (s *S3) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Msg("object uploaded")
	return nil
}

// Delete removes the object under key. Deleting an absent key succeeds.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URL returns the public object URL for key.
func (s *S3) URL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
