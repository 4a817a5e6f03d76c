package services

import (
	"fmt"
	"mime/multipart"

	"github.com/helpdesk-kit/support-desk-api/utils"
)

// AttachmentService handles ticket attachment upload, URL generation and
// deletion on top of an S3 backend.
type AttachmentService interface {
	// UploadAttachment validates and uploads an image file, returns the storage key
	UploadAttachment(fileHeader *multipart.FileHeader) (string, error)

	// GetAttachmentURL generates a URL for accessing an uploaded attachment
	GetAttachmentURL(s3Key string) (string, error)

	// DeleteAttachment removes an attachment from storage
	DeleteAttachment(s3Key string) error
}

// S3AttachmentService implements AttachmentService using AWS S3 for storage
type S3AttachmentService struct {
	s3Service S3Interface
}

// NewAttachmentService creates an attachment service with an S3 backend
func NewAttachmentService(s3Service S3Interface) *S3AttachmentService {
	return &S3AttachmentService{s3Service: s3Service}
}

// UploadAttachment validates and uploads an image file to S3
func (s *S3AttachmentService) UploadAttachment(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	s3Key, err := s.s3Service.UploadFile(fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}

	return s3Key, nil
}

// GetAttachmentURL generates a presigned URL for an attachment
func (s *S3AttachmentService) GetAttachmentURL(s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(s3Key)
	if err != nil {
		return "", fmt.Errorf("failed to generate attachment URL: %w", err)
	}

	return url, nil
}

// DeleteAttachment deletes an attachment from S3
func (s *S3AttachmentService) DeleteAttachment(s3Key string) error {
	if s3Key == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(s3Key); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	return nil
}
