package testutil

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/config"
	"github.com/kendall-kelly/campus-requests-api/controllers"
	"github.com/kendall-kelly/campus-requests-api/models"
	"github.com/kendall-kelly/campus-requests-api/routes"
	"github.com/kendall-kelly/campus-requests-api/services"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// App is a fully wired API backed by an in-memory database
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Receipts *services.MockReceiptStore
	Router   *gin.Engine
}

// NewTestDB opens a migrated in-memory sqlite database
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// NewApp builds the router with BearerSubjectAuth in place of Auth0.
// rdb may be nil.
func NewApp(t *testing.T, rdb *redis.Client) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		GoEnv:           "test",
		Auth0Domain:     "test.auth0.com",
		Auth0Audience:   "https://api.test.com",
		AllowedOrigins:  []string{"http://localhost:3000"},
		MaxRequestCount: services.DefaultMaxRequestCount,
		ReceiptStorage:  config.ReceiptStorageLocal,
	}
	db := NewTestDB(t)
	receipts := services.NewMockReceiptStore()

	catalog := services.NewRequestCatalog(db, nil)
	notifications := services.NewNotificationService(db, rdb, nil)
	ctl := &controllers.Controller{
		DB:            db,
		Users:         services.NewUserDirectory(db, nil),
		Catalog:       catalog,
		Requests:      services.NewRequestService(db, catalog, services.NewRequestPolicy(cfg.MaxRequestCount), receipts, notifications, nil),
		Query:         services.NewRequestQuery(db, receipts, nil),
		Notifications: notifications,
		Receipts:      receipts,
	}

	return &App{
		Config:   cfg,
		DB:       db,
		Receipts: receipts,
		Router: routes.Setup(routes.Deps{
			Config:       cfg,
			Controller:   ctl,
			Authenticate: BearerSubjectAuth(),
		}),
	}
}

// CreateUser stores a user whose bearer token is its Auth0 ID
func (a *App) CreateUser(t *testing.T, auth0ID, role string) *models.User {
	t.Helper()
	user := &models.User{Auth0ID: auth0ID, Name: "User " + auth0ID, Email: auth0ID + "@example.edu", Role: role}
	require.NoError(t, a.DB.Create(user).Error)
	return user
}

// CreateRequestType stores a catalog entry
func (a *App) CreateRequestType(t *testing.T, name string, price float64) *models.RequestType {
	t.Helper()
	rt := &models.RequestType{Name: name, UnitPrice: price}
	require.NoError(t, a.DB.Create(rt).Error)
	return rt
}
