package models

// Message is a single chat message between two users, optionally tied to an
// item. Messages are immutable once created; conversations are derived from
// the flat log, never stored.
type Message struct {
	BaseModel

	SenderID string  `gorm:"type:uuid;index;not null" json:"sender_id"`
	Sender   Profile `gorm:"foreignKey:SenderID" json:"-"`

	ReceiverID string  `gorm:"type:uuid;index;not null" json:"receiver_id"`
	Receiver   Profile `gorm:"foreignKey:ReceiverID" json:"-"`

	// ItemID is nil for general inquiries not tied to a listing.
	ItemID *string `gorm:"type:uuid;index" json:"item_id"`
	Item   *Item   `gorm:"foreignKey:ItemID" json:"-"`

	Body string `gorm:"type:text;not null" json:"message_text"`
}
