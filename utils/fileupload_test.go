package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateReceiptFile_AllowedFormats(t *testing.T) {
	content := []byte("fake image content")
	for _, name := range []string{"r.png", "r.jpg", "r.jpeg", "r.gif", "r.bmp", "r.webp", "R.PNG", "scan.JpEg"} {
		t.Run(name, func(t *testing.T) {
			fileHeader := createTestFileHeader(name, int64(len(content)), content)
			require.NotNil(t, fileHeader)
			assert.NoError(t, ValidateReceiptFile(fileHeader))
		})
	}
}

func TestValidateReceiptFile_FileTooLarge(t *testing.T) {
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("large.png", 3*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidateReceiptFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
	assert.Contains(t, fileErr.Message, "2 MB")
}

func TestValidateReceiptFile_InvalidFormat(t *testing.T) {
	content := []byte("%PDF-1.4")
	for _, name := range []string{"receipt.pdf", "receipt", "receipt.png.exe", "receipt.svg"} {
		t.Run(name, func(t *testing.T) {
			fileHeader := createTestFileHeader(name, int64(len(content)), content)
			require.NotNil(t, fileHeader)

			err := ValidateReceiptFile(fileHeader)
			fileErr, ok := err.(*FileUploadError)
			require.True(t, ok, "Error should be of type FileUploadError")
			assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
		})
	}
}

func TestReadUploadedFile(t *testing.T) {
	content := []byte("receipt bytes")
	fileHeader := createTestFileHeader("r.png", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	data, err := ReadUploadedFile(fileHeader)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestReadUploadedFile_TooLarge(t *testing.T) {
	content := bytes.Repeat([]byte("a"), MaxReceiptSize+10)
	fileHeader := createTestFileHeader("r.png", 10, content)
	require.NotNil(t, fileHeader)

	data, err := ReadUploadedFile(fileHeader)
	require.NoError(t, err)
	assert.Len(t, data, MaxReceiptSize+1)

	fileErr, ok := ValidateReceipt("r.png", int64(len(data))).(*FileUploadError)
	require.True(t, ok)
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
}

func TestIsSafeFilename(t *testing.T) {
	assert.True(t, IsSafeFilename("abc.png"))
	assert.False(t, IsSafeFilename(""))
	assert.False(t, IsSafeFilename("../secret"))
	assert.False(t, IsSafeFilename("a/b.png"))
	assert.False(t, IsSafeFilename(`a\b.png`))
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{Code: "TEST", Message: "test message"}
	assert.Equal(t, "test message", err.Error())
}
