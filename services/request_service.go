package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/campus-requests-api/models"
	"github.com/kendall-kelly/campus-requests-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeliveryDateLayout is the accepted format of an approval delivery date
const DeliveryDateLayout = "2006-01-02"

// MaxRejectReasonLength bounds the reason stored on a rejected request
const MaxRejectReasonLength = 255

// DispositionNotifier is told about every approved or rejected request
type DispositionNotifier interface {
	NotifyDisposition(ctx context.Context, req *models.StudentRequest) error
}

// Receipt is an uploaded payment receipt
type Receipt struct {
	Filename string
	Data     []byte
}

// SubmitInput is a student's request submission
type SubmitInput struct {
	RequestTypeID uint
	Count         int
	StudentID     string
	StudentNameAr string
	StudentNameEn string
	Department    string
	Channel       Channel
	Receipt       *Receipt
}

// RequestService owns the lifecycle of student requests: submission,
// admin disposition and withdrawal by the owner.
type RequestService struct {
	db       *gorm.DB
	catalog  *RequestCatalog
	policy   RequestPolicy
	receipts ReceiptStore
	notifier DispositionNotifier
	logger   *zap.Logger
}

// NewRequestService wires the lifecycle manager. notifier may be nil.
func NewRequestService(
	db *gorm.DB,
	catalog *RequestCatalog,
	policy RequestPolicy,
	receipts ReceiptStore,
	notifier DispositionNotifier,
	logger *zap.Logger,
) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		db:       db,
		catalog:  catalog,
		policy:   policy,
		receipts: receipts,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit creates a pending request after the policy accepts it
func (s *RequestService) Submit(ctx context.Context, actor Actor, in SubmitInput) (req *models.StudentRequest, err error) {
	defer func() {
		RequestSubmissions.WithLabelValues(submissionOutcome(err)).Inc()
	}()

	requestType, err := s.catalog.Get(ctx, in.RequestTypeID)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}

	allowance, err := s.policy.Evaluate(PolicyInput{
		Role:          actor.Role,
		Channel:       in.Channel,
		RequestTypeID: in.RequestTypeID,
		RequestType:   requestType,
		Count:         in.Count,
	})
	if err != nil {
		s.logger.Info("request submission denied",
			zap.Uint("user_id", actor.ID),
			zap.Uint("request_type_id", in.RequestTypeID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := validateSubmission(in); err != nil {
		return nil, err
	}

	var pending int64
	err = s.db.WithContext(ctx).Model(&models.StudentRequest{}).
		Where("user_id = ? AND request_type_id = ? AND status = ?", actor.ID, requestType.ID, models.StatusPending).
		Count(&pending).Error
	if err != nil {
		return nil, NewInternalError("Failed to check pending requests", err)
	}
	if pending > 0 {
		return nil, duplicatePendingError()
	}

	receiptPath, err := s.receipts.Put(ctx, in.Receipt.Data, in.Receipt.Filename)
	if err != nil {
		return nil, NewStorageError("Failed to store receipt", err)
	}

	created := models.StudentRequest{
		UserID:        actor.ID,
		RequestTypeID: requestType.ID,
		Count:         allowance.EffectiveCount,
		TotalPrice:    allowance.TotalPrice,
		StudentID:     strings.TrimSpace(in.StudentID),
		StudentNameAr: strings.TrimSpace(in.StudentNameAr),
		StudentNameEn: strings.TrimSpace(in.StudentNameEn),
		Department:    strings.TrimSpace(in.Department),
		ReceiptImage:  receiptPath,
		Status:        models.StatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&created).Error; err != nil {
		s.discardReceipt(ctx, receiptPath)
		if isUniqueViolation(err) {
			return nil, duplicatePendingError()
		}
		return nil, NewInternalError("Failed to create request", err)
	}

	s.logger.Info("request submitted",
		zap.Uint("request_id", created.ID),
		zap.Uint("user_id", actor.ID),
		zap.Uint("request_type_id", requestType.ID),
		zap.Int("count", created.Count),
		zap.Float64("total_price", created.TotalPrice),
	)

	return s.load(ctx, created.ID)
}

func validateSubmission(in SubmitInput) error {
	details := map[string]string{}
	if strings.TrimSpace(in.StudentID) == "" {
		details["student_id"] = "is required"
	} else if len(strings.TrimSpace(in.StudentID)) > 50 {
		details["student_id"] = "must be at most 50 characters"
	}
	for field, value := range map[string]string{
		"student_name_ar": in.StudentNameAr,
		"student_name_en": in.StudentNameEn,
		"department":      in.Department,
	} {
		if strings.TrimSpace(value) == "" {
			details[field] = "is required"
		} else if len(value) > 255 {
			details[field] = "must be at most 255 characters"
		}
	}
	if in.Receipt == nil || len(in.Receipt.Data) == 0 {
		details["receipt_image"] = "is required"
	} else if err := utils.ValidateReceipt(in.Receipt.Filename, int64(len(in.Receipt.Data))); err != nil {
		details["receipt_image"] = err.Error()
	}
	if len(details) > 0 {
		return NewValidationError("Invalid request data", details)
	}
	return nil
}

func duplicatePendingError() *AppError {
	return NewConflictError(CodeDuplicatePending, "You already have a pending request of this type")
}

// Approve accepts a pending request and records the delivery date
func (s *RequestService) Approve(ctx context.Context, admin Actor, id uint, deliveryDate string) (*models.StudentRequest, error) {
	if err := Authorize(admin, CapabilityReviewRequests); err != nil {
		return nil, err
	}

	date, err := time.Parse(DeliveryDateLayout, strings.TrimSpace(deliveryDate))
	if err != nil {
		return nil, NewValidationError("Invalid delivery date", map[string]string{
			"delivery_date": "must be a date in YYYY-MM-DD format",
		})
	}

	notes := "Delivery date: " + date.Format(DeliveryDateLayout)
	return s.dispose(ctx, admin, id, models.StatusApproved, notes)
}

// Reject declines a pending request with a reason
func (s *RequestService) Reject(ctx context.Context, admin Actor, id uint, reason string) (*models.StudentRequest, error) {
	if err := Authorize(admin, CapabilityReviewRequests); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, NewValidationError("Invalid rejection", map[string]string{"reason": "is required"})
	}
	if len(reason) > MaxRejectReasonLength {
		return nil, NewValidationError("Invalid rejection", map[string]string{
			"reason": fmt.Sprintf("must be at most %d characters", MaxRejectReasonLength),
		})
	}

	return s.dispose(ctx, admin, id, models.StatusRejected, reason)
}

// dispose moves a request out of pending. The update is conditional on the
// current status so two admins cannot both decide the same request.
func (s *RequestService) dispose(ctx context.Context, admin Actor, id uint, to models.RequestStatus, notes string) (*models.StudentRequest, error) {
	if !models.CanTransition(models.StatusPending, to) {
		return nil, NewInternalError("Invalid transition", fmt.Errorf("pending -> %s", to))
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.StudentRequest{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":         to,
			"notes":          notes,
			"reviewed_by_id": admin.ID,
			"reviewed_at":    now,
		})
	if result.Error != nil {
		return nil, NewInternalError("Failed to update request", result.Error)
	}

	if result.RowsAffected == 0 {
		var existing models.StudentRequest
		if err := s.db.WithContext(ctx).Select("id", "status").First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError(CodeRequestNotFound, "Request", id)
			}
			return nil, NewInternalError("Failed to load request", err)
		}
		return nil, NewConflictError(CodeNotPending,
			fmt.Sprintf("Request has already been %s", existing.Status))
	}

	RequestDispositions.WithLabelValues(string(to)).Inc()
	s.logger.Info("request disposed",
		zap.Uint("request_id", id),
		zap.String("status", string(to)),
		zap.Uint("admin_id", admin.ID),
	)

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyDisposition(ctx, req); err != nil {
			s.logger.Warn("failed to notify submitter",
				zap.Uint("request_id", id),
				zap.Uint("user_id", req.UserID),
				zap.Error(err),
			)
		}
	}

	return req, nil
}

// DeleteOwn withdraws a pending request owned by the actor and removes its receipt
func (s *RequestService) DeleteOwn(ctx context.Context, actor Actor, id uint) error {
	if err := Authorize(actor, CapabilityManageOwnRequests); err != nil {
		return err
	}

	var req models.StudentRequest
	if err := s.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError(CodeRequestNotFound, "Request", id)
		}
		return NewInternalError("Failed to load request", err)
	}

	if req.UserID != actor.ID {
		return NewForbiddenError(CodeForbidden, "You can only delete your own requests")
	}
	if req.Status != models.StatusPending {
		return NewForbiddenError(CodeNotPending, "Only pending requests can be deleted")
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", id, actor.ID, models.StatusPending).
		Delete(&models.StudentRequest{})
	if result.Error != nil {
		return NewInternalError("Failed to delete request", result.Error)
	}
	if result.RowsAffected == 0 {
		// decided by an admin between the read and the delete
		return NewForbiddenError(CodeNotPending, "Only pending requests can be deleted")
	}

	RequestDeletions.Inc()
	s.logger.Info("request deleted", zap.Uint("request_id", id), zap.Uint("user_id", actor.ID))

	// the row goes first so no request ever points at a missing receipt
	s.discardReceipt(ctx, req.ReceiptImage)
	return nil
}

// discardReceipt removes a blob whose request no longer exists. Failures are logged only.
func (s *RequestService) discardReceipt(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.receipts.Delete(ctx, path); err != nil {
		ReceiptCleanupFailures.Inc()
		s.logger.Warn("failed to delete receipt", zap.String("receipt", path), zap.Error(err))
	}
}

func (s *RequestService) load(ctx context.Context, id uint) (*models.StudentRequest, error) {
	var req models.StudentRequest
	err := s.db.WithContext(ctx).
		Preload("RequestType", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User").
		First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(CodeRequestNotFound, "Request", id)
		}
		return nil, NewInternalError("Failed to load request", err)
	}
	return &req, nil
}
