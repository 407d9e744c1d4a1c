package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxReceiptSize is 2MB in bytes
const MaxReceiptSize = 2 * 1024 * 1024

// AllowedReceiptFormats are the image extensions accepted as payment receipts
var AllowedReceiptFormats = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// IsAllowedReceiptFormat reports whether filename has an accepted image extension
func IsAllowedReceiptFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedReceiptFormats {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ValidateReceipt checks a receipt's file name and size
func ValidateReceipt(filename string, size int64) error {
	if size > MaxReceiptSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxReceiptSize/(1024*1024)),
		}
	}

	if !IsAllowedReceiptFormat(filename) {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Only %s files are allowed", strings.Join(AllowedReceiptFormats, ", ")),
		}
	}

	return nil
}

// ValidateReceiptFile validates the uploaded receipt format and size
func ValidateReceiptFile(fileHeader *multipart.FileHeader) error {
	return ValidateReceipt(fileHeader.Filename, fileHeader.Size)
}

// ReadUploadedFile reads the upload into memory. At most MaxReceiptSize+1 bytes
// are read so an oversized file is still detected by ValidateReceipt.
func ReadUploadedFile(fileHeader *multipart.FileHeader) (data []byte, err error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close uploaded file: %w", closeErr)
		}
	}()

	data, err = io.ReadAll(io.LimitReader(src, MaxReceiptSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

// IsSafeFilename rejects names that could escape the receipt directory
func IsSafeFilename(filename string) bool {
	return filename != "" &&
		!strings.Contains(filename, "..") &&
		!strings.Contains(filename, "/") &&
		!strings.Contains(filename, "\\")
}
