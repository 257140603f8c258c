package models

import "time"

// ItemStatus enumerates the lifecycle states of a reported item.
type ItemStatus string

const (
	ItemLost     ItemStatus = "lost"
	ItemFound    ItemStatus = "found"
	ItemMatched  ItemStatus = "matched"
	ItemReturned ItemStatus = "returned"
)

// Valid reports whether the status is one of the known item states.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemLost, ItemFound, ItemMatched, ItemReturned:
		return true
	}
	return false
}

// Item represents a lost or found item reported by a user. Items are never
// hard-deleted outside an admin purge; IsActive=false hides them from public
// listings and live feeds.
type Item struct {
	BaseModel

	UserID string  `gorm:"type:uuid;index;not null" json:"user_id"`
	Owner  Profile `gorm:"foreignKey:UserID" json:"-"`

	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	Category      string     `gorm:"type:varchar(64);index;not null" json:"category"`
	Status        ItemStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	Location      string     `gorm:"type:varchar(255);not null" json:"location"`
	DateLostFound time.Time  `json:"date_lost_found"`
	RewardOffered float64    `gorm:"default:0" json:"reward_offered"`

	IsActive bool `gorm:"default:true;index" json:"is_active"`
}
