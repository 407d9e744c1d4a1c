package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/kendall-kelly/campus-requests-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmitterView identifies who filed a request, shown to admins only
type SubmitterView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RequestView is the serialized form of a student request.
// AdminStatus carries the legacy spelling of Status for older clients.
type RequestView struct {
	ID              uint                 `json:"id"`
	RequestTypeID   uint                 `json:"request_type_id"`
	RequestTypeName string               `json:"request_type_name"`
	UnitPrice       float64              `json:"unit_price"`
	Count           int                  `json:"count"`
	TotalPrice      float64              `json:"total_price"`
	StudentID       string               `json:"student_id"`
	StudentNameAr   string               `json:"student_name_ar"`
	StudentNameEn   string               `json:"student_name_en"`
	Department      string               `json:"department"`
	ReceiptImage    string               `json:"receipt_image"`
	ReceiptURL      string               `json:"receipt_url"`
	Status          models.RequestStatus `json:"status"`
	AdminStatus     string               `json:"admin_status"`
	Notes           string               `json:"notes"`
	ReviewedAt      *time.Time           `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	Submitter       *SubmitterView       `json:"submitter,omitempty"`
}

// DashboardStats summarises request volume for the admin dashboard
type DashboardStats struct {
	Total              int64   `json:"total"`
	Pending            int64   `json:"pending"`
	Approved           int64   `json:"approved"`
	Rejected           int64   `json:"rejected"`
	PendingPercentage  float64 `json:"pending_percentage"`
	ApprovedPercentage float64 `json:"approved_percentage"`
	RejectedPercentage float64 `json:"rejected_percentage"`
}

// RequestQuery serves role-scoped read views of student requests
type RequestQuery struct {
	db       *gorm.DB
	receipts ReceiptStore
	logger   *zap.Logger
}

// NewRequestQuery creates the query service. receipts may be nil, in which
// case views carry no receipt URL.
func NewRequestQuery(db *gorm.DB, receipts ReceiptStore, logger *zap.Logger) *RequestQuery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestQuery{db: db, receipts: receipts, logger: logger}
}

func (q *RequestQuery) withRelations(ctx context.Context) *gorm.DB {
	return q.db.WithContext(ctx).
		Preload("RequestType", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User")
}

// ListOwn returns the actor's requests, newest first
func (q *RequestQuery) ListOwn(ctx context.Context, actor Actor) ([]RequestView, error) {
	if err := Authorize(actor, CapabilityManageOwnRequests); err != nil {
		return nil, err
	}

	var requests []models.StudentRequest
	err := q.withRelations(ctx).
		Where("user_id = ?", actor.ID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, NewInternalError("Failed to list requests", err)
	}
	return q.views(ctx, requests, false), nil
}

// ListByStatus returns requests in a status, newest first. An empty status means pending.
func (q *RequestQuery) ListByStatus(ctx context.Context, admin Actor, status string) ([]RequestView, error) {
	if err := Authorize(admin, CapabilityReviewRequests); err != nil {
		return nil, err
	}

	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	requests, err := q.findByStatus(ctx, st)
	if err != nil {
		return nil, err
	}
	return q.views(ctx, requests, true), nil
}

func (q *RequestQuery) findByStatus(ctx context.Context, status models.RequestStatus) ([]models.StudentRequest, error) {
	var requests []models.StudentRequest
	err := q.withRelations(ctx).
		Where("status = ?", status).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, NewInternalError("Failed to list requests", err)
	}
	return requests, nil
}

func parseStatusFilter(value string) (models.RequestStatus, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return models.StatusPending, nil
	}
	st, ok := models.ParseRequestStatus(value)
	if !ok {
		return "", NewValidationError("Invalid status filter", map[string]string{
			"status": "must be pending, approved or rejected",
		})
	}
	return st, nil
}

// GetPending returns a single pending request for review
func (q *RequestQuery) GetPending(ctx context.Context, admin Actor, id uint) (*RequestView, error) {
	if err := Authorize(admin, CapabilityReviewRequests); err != nil {
		return nil, err
	}

	var req models.StudentRequest
	err := q.withRelations(ctx).
		Where("status = ?", models.StatusPending).
		First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(CodeRequestNotFound, "Pending request", id)
		}
		return nil, NewInternalError("Failed to load request", err)
	}

	view := q.View(ctx, &req, true)
	return &view, nil
}

// Stats counts requests per status
func (q *RequestQuery) Stats(ctx context.Context, admin Actor) (*DashboardStats, error) {
	if err := Authorize(admin, CapabilityViewDashboard); err != nil {
		return nil, err
	}

	var rows []struct {
		Status models.RequestStatus
		Total  int64
	}
	err := q.db.WithContext(ctx).Model(&models.StudentRequest{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, NewInternalError("Failed to load dashboard stats", err)
	}

	stats := &DashboardStats{}
	for _, row := range rows {
		switch row.Status {
		case models.StatusPending:
			stats.Pending = row.Total
		case models.StatusApproved:
			stats.Approved = row.Total
		case models.StatusRejected:
			stats.Rejected = row.Total
		}
		stats.Total += row.Total
	}
	stats.PendingPercentage = percentage(stats.Pending, stats.Total)
	stats.ApprovedPercentage = percentage(stats.Approved, stats.Total)
	stats.RejectedPercentage = percentage(stats.Rejected, stats.Total)

	return stats, nil
}

func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

func (q *RequestQuery) views(ctx context.Context, requests []models.StudentRequest, withSubmitter bool) []RequestView {
	views := make([]RequestView, 0, len(requests))
	for i := range requests {
		views = append(views, q.View(ctx, &requests[i], withSubmitter))
	}
	return views
}

// View projects a request for serialization. The submitter is only included for admin views.
func (q *RequestQuery) View(ctx context.Context, req *models.StudentRequest, withSubmitter bool) RequestView {
	view := RequestView{
		ID:            req.ID,
		RequestTypeID: req.RequestTypeID,
		Count:         req.Count,
		TotalPrice:    req.TotalPrice,
		StudentID:     req.StudentID,
		StudentNameAr: req.StudentNameAr,
		StudentNameEn: req.StudentNameEn,
		Department:    req.Department,
		ReceiptImage:  req.ReceiptImage,
		Status:        req.Status,
		AdminStatus:   req.Status.LegacyAdminStatus(),
		Notes:         req.Notes,
		ReviewedAt:    req.ReviewedAt,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
	}
	if req.RequestType != nil {
		view.RequestTypeName = req.RequestType.Name
		view.UnitPrice = req.RequestType.UnitPrice
	}
	if withSubmitter && req.User != nil {
		view.Submitter = &SubmitterView{
			ID:    req.User.ID,
			Name:  req.User.Name,
			Email: req.User.Email,
			Role:  req.User.Role,
		}
	}
	if q.receipts != nil && req.ReceiptImage != "" {
		url, err := q.receipts.URL(ctx, req.ReceiptImage)
		if err != nil {
			q.logger.Warn("failed to build receipt url", zap.Uint("request_id", req.ID), zap.Error(err))
		} else {
			view.ReceiptURL = url
		}
	}
	return view
}

// FindByReceipt returns the request a stored receipt belongs to
func (q *RequestQuery) FindByReceipt(ctx context.Context, path string) (*models.StudentRequest, error) {
	var req models.StudentRequest
	if err := q.db.WithContext(ctx).Where("receipt_image = ?", path).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &AppError{Kind: KindNotFound, Code: "FILE_NOT_FOUND", Message: "Receipt not found"}
		}
		return nil, NewInternalError("Failed to load request", err)
	}
	return &req, nil
}
