package models

import "time"

// RequestStatus is the single authoritative lifecycle state of a student request
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// ParseRequestStatus accepts the canonical names plus the legacy "accepted" alias
func ParseRequestStatus(value string) (RequestStatus, bool) {
	switch value {
	case string(StatusPending):
		return StatusPending, true
	case string(StatusApproved), "accepted":
		return StatusApproved, true
	case string(StatusRejected):
		return StatusRejected, true
	}
	return "", false
}

// IsTerminal reports whether no further transition is possible from s
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether a request may move from one status to another
func CanTransition(from, to RequestStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	default:
		return false
	}
}

// LegacyAdminStatus returns the older admin_status spelling of the status.
// It is only used when serializing responses.
func (s RequestStatus) LegacyAdminStatus() string {
	if s == StatusApproved {
		return "accepted"
	}
	return string(s)
}

// StudentRequest is one submitted instance of a request type.
// The partial unique index allows a single pending request per user and type.
type StudentRequest struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uint          `gorm:"not null;index;uniqueIndex:idx_student_requests_one_pending,priority:1,where:status = 'pending'" json:"user_id"`
	User          *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RequestTypeID uint          `gorm:"not null;index;uniqueIndex:idx_student_requests_one_pending,priority:2,where:status = 'pending'" json:"request_type_id"`
	RequestType   *RequestType  `gorm:"foreignKey:RequestTypeID" json:"request_type,omitempty"`
	Count         int           `gorm:"not null;check:count > 0" json:"count"`
	TotalPrice    float64       `gorm:"not null" json:"total_price"` // snapshot, never recomputed
	StudentID     string        `gorm:"size:50;not null" json:"student_id"`
	StudentNameAr string        `gorm:"size:255;not null" json:"student_name_ar"`
	StudentNameEn string        `gorm:"size:255;not null" json:"student_name_en"`
	Department    string        `gorm:"size:255;not null" json:"department"`
	ReceiptImage  string        `gorm:"not null" json:"receipt_image"`
	Status        RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes         string        `gorm:"type:text" json:"notes"`
	ReviewedByID  *uint         `json:"reviewed_by_id,omitempty"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the StudentRequest model
func (StudentRequest) TableName() string {
	return "student_requests"
}
