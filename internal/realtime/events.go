package realtime

import "time"

// Event names exchanged over the realtime channel.
const (
	// Client -> server
	EventRegister    = "register"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"

	// Server -> client
	EventNewItem        = "new_item"
	EventItemDeleted    = "item_deleted"
	EventNewMessage     = "new_message"
	EventMessageSent    = "message_sent"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
	EventNotification   = "notification"
)

// Envelope is the wire frame for every realtime event in either direction.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// RegisterPayload binds a websocket endpoint to a user identity.
type RegisterPayload struct {
	UserID string `json:"user_id"`
}

// ItemPayload announces a newly posted item to every connected client.
// OwnerID lets clients suppress the author's own toast by identity rather
// than by display name.
type ItemPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	Location  string    `json:"location"`
	OwnerID   string    `json:"owner_id"`
	OwnerName string    `json:"owner_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemDeletedPayload tells clients to purge an item from active views.
type ItemDeletedPayload struct {
	ID string `json:"id"`
}

// ChatPayload carries a relayed chat message.
type ChatPayload struct {
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	ReceiverID string    `json:"receiver_id"`
	ItemID     *string   `json:"item_id"`
	Text       string    `json:"message_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// TypingPayload carries an ephemeral typing indicator. Never persisted.
type TypingPayload struct {
	ReceiverID string  `json:"receiver_id"`
	ItemID     *string `json:"item_id"`
}
