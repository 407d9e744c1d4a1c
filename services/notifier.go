package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/campus-requests-api/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserChannel is the Redis pub/sub channel for a user's notifications
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// NotificationService stores in-app notifications and publishes them to Redis
type NotificationService struct {
	db     *gorm.DB
	rdb    *redis.Client
	logger *zap.Logger
}

// NewNotificationService creates the service. rdb may be nil, in which case
// notifications are only stored.
func NewNotificationService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{db: db, rdb: rdb, logger: logger}
}

// NotifyDisposition tells the submitter that an admin approved or rejected their request
func (s *NotificationService) NotifyDisposition(ctx context.Context, req *models.StudentRequest) error {
	typeName := "your request"
	if req.RequestType != nil {
		typeName = req.RequestType.Name
	}

	n := models.Notification{
		UserID:           req.UserID,
		StudentRequestID: &req.ID,
	}
	switch req.Status {
	case models.StatusApproved:
		n.Type = models.NotificationRequestApproved
		n.Title = "Request approved"
		n.Body = fmt.Sprintf("Your request for %s was approved. %s", typeName, req.Notes)
	case models.StatusRejected:
		n.Type = models.NotificationRequestRejected
		n.Title = "Request rejected"
		n.Body = fmt.Sprintf("Your request for %s was rejected: %s", typeName, req.Notes)
	default:
		return fmt.Errorf("request %d has no disposition", req.ID)
	}

	return s.Create(ctx, &n)
}

// Create stores a notification and publishes it to the user's channel
func (s *NotificationService) Create(ctx context.Context, n *models.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return s.publish(ctx, n)
}

func (s *NotificationService) publish(ctx context.Context, n *models.Notification) error {
	if s.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	if err := s.rdb.Publish(ctx, UserChannel(n.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// List returns the actor's notifications, newest first
func (s *NotificationService) List(ctx context.Context, actor Actor) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", actor.ID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, NewInternalError("Failed to list notifications", err)
	}
	return notifications, nil
}

// MarkRead marks one of the actor's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, actor.ID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(CodeNotificationMissing, "Notification", id)
		}
		return nil, NewInternalError("Failed to load notification", err)
	}

	if n.ReadAt == nil {
		now := time.Now()
		if err := s.db.WithContext(ctx).Model(&n).Update("read_at", now).Error; err != nil {
			return nil, NewInternalError("Failed to update notification", err)
		}
		n.ReadAt = &now
	}
	return &n, nil
}

// UnreadCount returns how many of the actor's notifications are unread
func (s *NotificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", actor.ID).
		Count(&count).Error
	if err != nil {
		return 0, NewInternalError("Failed to count notifications", err)
	}
	return count, nil
}
