package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/middleware"
	"github.com/kendall-kelly/campus-requests-api/models"
	"github.com/kendall-kelly/campus-requests-api/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

type testEnv struct {
	db       *gorm.DB
	ctl      *Controller
	receipts *services.MockReceiptStore
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	receipts := services.NewMockReceiptStore()
	catalog := services.NewRequestCatalog(db, nil)
	notifications := services.NewNotificationService(db, nil, nil)

	return &testEnv{
		db:       db,
		receipts: receipts,
		ctl: &Controller{
			DB:            db,
			Users:         services.NewUserDirectory(db, nil),
			Catalog:       catalog,
			Requests:      services.NewRequestService(db, catalog, services.NewRequestPolicy(services.DefaultMaxRequestCount), receipts, notifications, nil),
			Query:         services.NewRequestQuery(db, receipts, nil),
			Notifications: notifications,
			Receipts:      receipts,
		},
	}
}

func (e *testEnv) createUser(t *testing.T, auth0ID, role string) *models.User {
	user := &models.User{
		Auth0ID: auth0ID,
		Name:    "User " + auth0ID,
		Email:   auth0ID + "@example.edu",
		Role:    role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createRequestType(t *testing.T, name string, price float64) *models.RequestType {
	rt := &models.RequestType{Name: name, UnitPrice: price}
	require.NoError(t, e.db.Create(rt).Error)
	return rt
}

// asUser simulates the auth and actor middleware for a stored user
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", user.Auth0ID)
		middleware.SetActor(c, services.Actor{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing
// It sets up the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{Role: role},
		})
		c.Next()
	}
}

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		userInfo, exists := userInfoMap[authHeader[7:]]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userInfo)
	}))
}

type submission struct {
	requestTypeID uint
	count         string
	filename      string
	content       []byte
	from          string
}

func newSubmission(typeID uint, count int) submission {
	return submission{
		requestTypeID: typeID,
		count:         strconv.Itoa(count),
		filename:      "receipt.png",
		content:       []byte("\x89PNG\r\n\x1a\nreceipt"),
		from:          "mobile",
	}
}

// request builds the multipart form the mobile app sends
func (s submission) request(t *testing.T) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"request_type_id": strconv.FormatUint(uint64(s.requestTypeID), 10),
		"count":           s.count,
		"student_id":      "20231234",
		"student_name_ar": "سارة أحمد",
		"student_name_en": "Sara Ahmed",
		"department":      "Computer Science",
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if s.filename != "" {
		part, err := writer.CreateFormFile("receipt_image", s.filename)
		require.NoError(t, err)
		_, err = part.Write(s.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/student-requests", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.from != "" {
		req.Header.Set(middleware.OriginHeader, s.from)
	}
	return req
}

func jsonRequest(t *testing.T, method, url string, payload interface{}) *http.Request {
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, url, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	response := decode(t, w)
	errData, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "body: %s", w.Body.String())
	return errData["code"].(string)
}
