package services

import (
	"context"
	"testing"

	"github.com/kendall-kelly/campus-requests-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to connect to test database")

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate test database")
	return db
}

func createUser(t *testing.T, db *gorm.DB, auth0ID, role string) *models.User {
	t.Helper()
	user := &models.User{
		Auth0ID: auth0ID,
		Name:    "User " + auth0ID,
		Email:   auth0ID + "@example.edu",
		Role:    role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createRequestType(t *testing.T, db *gorm.DB, name string, price float64) *models.RequestType {
	t.Helper()
	rt := &models.RequestType{Name: name, UnitPrice: price}
	require.NoError(t, db.Create(rt).Error)
	return rt
}

func actorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

type fixture struct {
	db       *gorm.DB
	catalog  *RequestCatalog
	receipts *MockReceiptStore
	notifier *recordingNotifier
	service  *RequestService
	query    *RequestQuery
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	catalog := NewRequestCatalog(db, nil)
	receipts := NewMockReceiptStore()
	notifier := &recordingNotifier{}
	return &fixture{
		db:       db,
		catalog:  catalog,
		receipts: receipts,
		notifier: notifier,
		service:  NewRequestService(db, catalog, NewRequestPolicy(DefaultMaxRequestCount), receipts, notifier, nil),
		query:    NewRequestQuery(db, receipts, nil),
	}
}

type recordingNotifier struct {
	calls []models.StudentRequest
	err   error
}

func (n *recordingNotifier) NotifyDisposition(_ context.Context, req *models.StudentRequest) error {
	n.calls = append(n.calls, *req)
	return n.err
}

func validSubmission(typeID uint, count int) SubmitInput {
	return SubmitInput{
		RequestTypeID: typeID,
		Count:         count,
		StudentID:     "20231234",
		StudentNameAr: "سارة أحمد",
		StudentNameEn: "Sara Ahmed",
		Department:    "Computer Science",
		Channel:       ChannelMobile,
		Receipt:       &Receipt{Filename: "receipt.png", Data: []byte("\x89PNG\r\n\x1a\nfake")},
	}
}

func assertKind(t *testing.T, err error, kind ErrorKind, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, kind, appErr.Kind, "unexpected kind for %v", err)
	if code != "" {
		require.Equal(t, code, appErr.Code)
	}
}
