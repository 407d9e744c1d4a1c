package integration

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/config"
	"github.com/kendall-kelly/campus-requests-api/controllers"
	"github.com/kendall-kelly/campus-requests-api/routes"
	"github.com/kendall-kelly/campus-requests-api/services"
	"github.com/kendall-kelly/campus-requests-api/tests/testutil"
	"github.com/stretchr/testify/suite"
)

// AuthIntegrationTestSuite runs the real JWT middleware in front of the API
type AuthIntegrationTestSuite struct {
	suite.Suite
	router *gin.Engine
}

// SetupSuite runs once before all tests
func (suite *AuthIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	testutil.MustSetTestEnvironment(suite.T())

	cfg := &config.Config{
		GoEnv:           "test",
		Auth0Domain:     "test.auth0.com",
		Auth0Audience:   "https://api.test.com",
		MaxRequestCount: services.DefaultMaxRequestCount,
	}
	db := testutil.NewTestDB(suite.T())

	// Authenticate is left nil so the Auth0 middleware is used
	suite.router = routes.Setup(routes.Deps{
		Config: cfg,
		Controller: &controllers.Controller{
			DB:    db,
			Users: services.NewUserDirectory(db, nil),
		},
	})
}

// TestPublicEndpoint tests that public endpoints work without authentication
func (suite *AuthIntegrationTestSuite) TestPublicEndpoint() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	suite.Equal(http.StatusOK, w.Code)
	response := testutil.Decode(suite.T(), w.Body.Bytes())
	suite.Equal(true, response["success"])
}

// TestProtectedEndpoints_NoToken tests that every protected route rejects anonymous callers
func (suite *AuthIntegrationTestSuite) TestProtectedEndpoints_NoToken() {
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodGet, "/api/v1/requests"},
		{http.MethodGet, "/api/v1/student-requests"},
		{http.MethodPost, "/api/v1/student-requests"},
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodGet, "/api/v1/admin/student-requests"},
		{http.MethodGet, "/api/v1/admin/dashboard"},
	}

	for _, route := range routes {
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))

		suite.Equal(http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
		suite.Equal("INVALID_TOKEN", testutil.ErrorCode(suite.T(), w.Body.Bytes()))
	}
}

// TestProtectedEndpoint_MalformedToken tests that a token that is not a JWT is rejected
func (suite *AuthIntegrationTestSuite) TestProtectedEndpoint_MalformedToken() {
	for _, header := range []string{"Bearer not-a-jwt", "Basic dXNlcjpwYXNz", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)

		suite.Equal(http.StatusUnauthorized, w.Code, header)
	}
}

func TestAuthIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthIntegrationTestSuite))
}
