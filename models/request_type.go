package models

import (
	"time"

	"gorm.io/gorm"
)

// RequestType is a catalog entry describing a service students can request
type RequestType struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	UnitPrice   float64        `gorm:"not null;check:unit_price >= 0" json:"unit_price"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"` // soft delete keeps history resolvable
}

// TableName specifies the table name for the RequestType model
func (RequestType) TableName() string {
	return "request_types"
}
