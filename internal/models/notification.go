package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types by originating domain event.
const (
	NotificationMessage = "message"
	NotificationItem    = "item"
	NotificationRequest = "request"
)

// Notification represents a durable in-app notification for a user. It is
// written by the fan-out layer before any live push is attempted and is only
// ever mutated by its owner flipping the read flag.
type Notification struct {
	BaseModel

	UserID string  `gorm:"type:uuid;index;not null" json:"user_id"`
	User   Profile `gorm:"foreignKey:UserID" json:"-"`

	Title  string     `gorm:"type:varchar(255);not null" json:"title"`
	Body   string     `gorm:"type:text" json:"message"`
	Type   string     `gorm:"type:varchar(32);index;not null" json:"type"`
	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`

	RelatedItemID *string        `gorm:"type:uuid" json:"related_item_id"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
}
