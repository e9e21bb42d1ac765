package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded files and returns their public URL.
type Storage interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Presigner is implemented by backends that can hand the client a direct
// upload URL instead of proxying the bytes.
type Presigner interface {
	PresignUpload(filename, contentType, folder string) (*PresignedURLResponse, error)
}

type PresignedURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

// NewObjectKey builds a collision-free key under folder, keeping the
// original file extension.
func NewObjectKey(filename, folder string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
}

// ValidateContentType rejects content types outside the allow list.
func ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}

// ValidateFileSize rejects files larger than maxSize bytes.
func ValidateFileSize(size, maxSize int64) error {
	if size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}
	return nil
}
