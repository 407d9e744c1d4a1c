package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/models"
	"github.com/kendall-kelly/campus-requests-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) receiptRouter(user *models.User) *gin.Engine {
	router := setupTestRouter()
	router.Use(asUser(user))
	router.GET("/receipts/:filename", e.ctl.GetReceipt)
	return router
}

func TestGetReceipt_OwnerAndAdmin(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "auth0|student", models.RoleStudent)
	admin := env.createUser(t, "auth0|admin", models.RoleAdmin)
	transcript := env.createRequestType(t, "Transcript", 10)
	req := env.submitPending(t, student, transcript)
	filename := services.ReceiptFilename(req.ReceiptImage)

	for _, user := range []*models.User{student, admin} {
		t.Run(user.Role, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.receiptRouter(user).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/receipts/"+filename, nil))

			require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
			assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
			assert.Equal(t, "private, max-age=3600", w.Header().Get("Cache-Control"))
			assert.Equal(t, []byte("\x89PNG\r\n\x1a\nreceipt"), w.Body.Bytes())
		})
	}
}

func TestGetReceipt_OtherStudentForbidden(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "auth0|student", models.RoleStudent)
	other := env.createUser(t, "auth0|other", models.RoleStudent)
	transcript := env.createRequestType(t, "Transcript", 10)
	req := env.submitPending(t, student, transcript)

	w := httptest.NewRecorder()
	env.receiptRouter(other).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/receipts/"+services.ReceiptFilename(req.ReceiptImage), nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))
}

func TestGetReceipt_NotFound(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "auth0|student", models.RoleStudent)
	transcript := env.createRequestType(t, "Transcript", 10)
	req := env.submitPending(t, student, transcript)

	w := httptest.NewRecorder()
	env.receiptRouter(student).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/receipts/unknown.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "FILE_NOT_FOUND", errorCode(t, w))

	// The row exists but the blob is gone
	require.NoError(t, env.receipts.Delete(context.Background(), req.ReceiptImage))
	w = httptest.NewRecorder()
	env.receiptRouter(student).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/receipts/"+services.ReceiptFilename(req.ReceiptImage), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "FILE_NOT_FOUND", errorCode(t, w))
}

func TestGetReceipt_DirectoryTraversal(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "auth0|student", models.RoleStudent)
	router := env.receiptRouter(student)

	testCases := []struct {
		name           string
		filename       string
		expectedStatus int
		expectedError  string
	}{
		// Gin treats slashes as path separators so these never reach the handler
		{"Parent directory traversal", "../../../etc/passwd", http.StatusNotFound, ""},
		{"Forward slash in filename", "path/to/file.png", http.StatusNotFound, ""},

		{"Backslash in filename", "path\\to\\file.png", http.StatusBadRequest, "INVALID_FILENAME"},
		{"Dots in filename", "..file.png", http.StatusBadRequest, "INVALID_FILENAME"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/receipts/"+tc.filename, nil))

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedError != "" {
				assert.Contains(t, w.Body.String(), tc.expectedError)
			}
		})
	}
}

func TestGetReceipt_InvalidFileType(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "auth0|student", models.RoleStudent)
	router := env.receiptRouter(student)

	for _, filename := range []string{"receipt.pdf", "receipt", "document.txt"} {
		t.Run(filename, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/receipts/"+filename, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_FILE_TYPE", errorCode(t, w))
		})
	}
}
