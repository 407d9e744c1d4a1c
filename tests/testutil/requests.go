package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// PNGReceipt is the smallest payload http.DetectContentType reports as image/png
var PNGReceipt = []byte("\x89PNG\r\n\x1a\nreceipt")

// Submission describes the multipart form the mobile app posts
type Submission struct {
	RequestTypeID uint
	Count         int
	Filename      string
	Content       []byte
	From          string
}

// MobileSubmission is a valid submission from the mobile app
func MobileSubmission(typeID uint, count int) Submission {
	return Submission{
		RequestTypeID: typeID,
		Count:         count,
		Filename:      "receipt.png",
		Content:       PNGReceipt,
		From:          "mobile",
	}
}

// Body encodes the submission and returns the body with its content type
func (s Submission) Body(t *testing.T) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"request_type_id": strconv.FormatUint(uint64(s.RequestTypeID), 10),
		"count":           strconv.Itoa(s.Count),
		"student_id":      "20231234",
		"student_name_ar": "سارة أحمد",
		"student_name_en": "Sara Ahmed",
		"department":      "Computer Science",
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if s.Filename != "" {
		part, err := writer.CreateFormFile("receipt_image", s.Filename)
		require.NoError(t, err)
		_, err = part.Write(s.Content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// Request builds an in-process submission request authenticated as token
func (s Submission) Request(t *testing.T, token string) *http.Request {
	t.Helper()
	body, contentType := s.Body(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/student-requests", body)
	req.Header.Set("Content-Type", contentType)
	if s.From != "" {
		req.Header.Set("X-From", s.From)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// JSONRequest builds an in-process JSON request authenticated as token
func JSONRequest(t *testing.T, method, path, token string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// Decode unmarshals a JSON response body
func Decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &response), "body: %s", string(body))
	return response
}

// ErrorCode returns error.code from a failure envelope
func ErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	errData, ok := Decode(t, body)["error"].(map[string]interface{})
	require.True(t, ok, "body: %s", string(body))
	code, _ := errData["code"].(string)
	return code
}
