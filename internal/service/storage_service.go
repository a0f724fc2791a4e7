package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	maxImageSize    = 5 * 1024 * 1024 // 5 MB
	presignedURLTTL = 15 * time.Minute

	profilePhotoPrefix = "profiles"
	eventImagePrefix   = "events"
	articleImagePrefix = "articles"
)

var (
	ErrFileTooBig           = errors.New("file size exceeds 5MB limit")
	ErrInvalidFileType      = errors.New("invalid file type, only JPEG and PNG images are allowed")
	ErrBucketCreationFailed = errors.New("failed to create storage bucket")
	ErrUploadFailed         = errors.New("failed to upload file")
	ErrDeleteFailed         = errors.New("failed to delete file")
	ErrURLGenerationFailed  = errors.New("failed to generate presigned URL")

	allowedContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
)

// StorageService stores the site's images: member profile photos and the
// cover images of events and articles.
type StorageService interface {
	UploadProfilePhoto(ctx context.Context, accountID uint, file io.Reader, fileSize int64, contentType string) (string, error)
	UploadEventImage(ctx context.Context, eventID uint, file io.Reader, fileSize int64, contentType string) (string, error)
	UploadArticleImage(ctx context.Context, articleID uint, file io.Reader, fileSize int64, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	GenerateURL(ctx context.Context, objectKey string) (string, error)
}

// MinIOStorageService implements StorageService on MinIO/S3-compatible
// storage.
type MinIOStorageService struct {
	client     *minio.Client
	bucketName string
}

func NewMinIOStorageService(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	// Bucket setup is deferred to first use so an unreachable MinIO does not
	// block startup.
	return &MinIOStorageService{client: client, bucketName: bucketName}, nil
}

func (s *MinIOStorageService) ensureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
		}
	}
	return nil
}

func (s *MinIOStorageService) UploadProfilePhoto(ctx context.Context, accountID uint, file io.Reader, fileSize int64, contentType string) (string, error) {
	return s.upload(ctx, fmt.Sprintf("%s/account-%d", profilePhotoPrefix, accountID), file, fileSize, contentType)
}

func (s *MinIOStorageService) UploadEventImage(ctx context.Context, eventID uint, file io.Reader, fileSize int64, contentType string) (string, error) {
	return s.upload(ctx, fmt.Sprintf("%s/event-%d", eventImagePrefix, eventID), file, fileSize, contentType)
}

func (s *MinIOStorageService) UploadArticleImage(ctx context.Context, articleID uint, file io.Reader, fileSize int64, contentType string) (string, error) {
	return s.upload(ctx, fmt.Sprintf("%s/article-%d", articleImagePrefix, articleID), file, fileSize, contentType)
}

func (s *MinIOStorageService) upload(ctx context.Context, keyPrefix string, file io.Reader, fileSize int64, contentType string) (string, error) {
	if fileSize > maxImageSize {
		return "", ErrFileTooBig
	}
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if _, allowed := allowedContentTypes[normalized]; !allowed {
		return "", ErrInvalidFileType
	}

	if err := s.ensureBucketExists(ctx); err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s/%s%s", keyPrefix, uuid.New().String(), contentTypeToExtension(normalized))
	metadata := map[string]string{
		"Content-Type": normalized,
		"Uploaded-At":  time.Now().UTC().Format(time.RFC3339),
	}
	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, file, fileSize, minio.PutObjectOptions{
		ContentType:  normalized,
		UserMetadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return objectKey, nil
}

func (s *MinIOStorageService) Delete(ctx context.Context, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// GenerateURL generates a presigned GET URL for an object.
func (s *MinIOStorageService) GenerateURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", fmt.Errorf("%w: empty object key", ErrURLGenerationFailed)
	}
	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, presignedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	return presignedURL.String(), nil
}

// DisabledStorageService stands in when no MinIO endpoint is configured.
// Deletes are accepted silently so profile cleanup keeps working.
type DisabledStorageService struct{}

func NewDisabledStorageService() *DisabledStorageService { return &DisabledStorageService{} }

var errStorageDisabled = errors.New("media storage is not configured")

func (*DisabledStorageService) UploadProfilePhoto(context.Context, uint, io.Reader, int64, string) (string, error) {
	return "", fmt.Errorf("%w: %v", ErrUploadFailed, errStorageDisabled)
}

func (*DisabledStorageService) UploadEventImage(context.Context, uint, io.Reader, int64, string) (string, error) {
	return "", fmt.Errorf("%w: %v", ErrUploadFailed, errStorageDisabled)
}

func (*DisabledStorageService) UploadArticleImage(context.Context, uint, io.Reader, int64, string) (string, error) {
	return "", fmt.Errorf("%w: %v", ErrUploadFailed, errStorageDisabled)
}

func (*DisabledStorageService) Delete(context.Context, string) error { return nil }

func (*DisabledStorageService) GenerateURL(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, errStorageDisabled)
}

func contentTypeToExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}
