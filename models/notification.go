package models

import "time"

// Notification types
const (
	NotificationRequestApproved = "request_approved"
	NotificationRequestRejected = "request_rejected"
)

// Notification is an in-app message delivered to a single user
type Notification struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;index" json:"user_id"`
	Type             string     `gorm:"size:50;not null" json:"type"`
	Title            string     `gorm:"not null" json:"title"`
	Body             string     `gorm:"type:text" json:"body"`
	StudentRequestID *uint      `gorm:"index" json:"student_request_id,omitempty"`
	ReadAt           *time.Time `json:"read_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// All returns every model managed by AutoMigrate
func All() []interface{} {
	return []interface{}{&User{}, &RequestType{}, &StudentRequest{}, &Notification{}}
}
