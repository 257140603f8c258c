package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/models"
)

// recordedEvent is one push captured by the recording broadcaster.
type recordedEvent struct {
	UserID string // empty for broadcasts
	Event  string
	Data   any
}

// recordingBroadcaster captures pushes instead of delivering them so tests
// can assert on fan-out behavior without a live websocket.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent

	// connected controls EmitToUser's return value per user id.
	connected map[string]bool
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{connected: make(map[string]bool)}
}

func (b *recordingBroadcaster) EmitToUser(userID, event string, data any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{UserID: userID, Event: event, Data: data})
	return b.connected[userID]
}

func (b *recordingBroadcaster) EmitAll(event string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Event: event, Data: data})
}

func (b *recordingBroadcaster) recorded(event string) []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []recordedEvent
	for _, e := range b.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func seedUser(t *testing.T, db *gorm.DB, email, name, role string) models.Profile {
	t.Helper()

	user := models.Profile{
		Email:    email,
		Password: "not-a-real-hash",
		FullName: name,
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedItem(t *testing.T, db *gorm.DB, ownerID, title string, status models.ItemStatus) models.Item {
	t.Helper()

	item := models.Item{
		UserID:        ownerID,
		Title:         title,
		Description:   "seeded for tests",
		Category:      "electronics",
		Status:        status,
		Location:      "Main Library",
		DateLostFound: time.Now().UTC().Add(-24 * time.Hour),
		IsActive:      true,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func seedCustodian(t *testing.T, db *gorm.DB, name string) models.Custodian {
	t.Helper()

	custodian := models.Custodian{
		Name:     name,
		Location: "Campus Center",
		IsActive: true,
	}
	require.NoError(t, db.Create(&custodian).Error)
	return custodian
}

func seedMessage(t *testing.T, db *gorm.DB, senderID, receiverID string, itemID *string, text string, at time.Time) models.Message {
	t.Helper()

	message := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		ItemID:     itemID,
		Body:       text,
	}
	message.CreatedAt = at
	require.NoError(t, db.Create(&message).Error)
	return message
}

// seedMessageWithID pins the message id so tests can control ordering between
// rows that share a timestamp.
func seedMessageWithID(t *testing.T, db *gorm.DB, id, senderID, receiverID string, itemID *string, text string, at time.Time) models.Message {
	t.Helper()

	message := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		ItemID:     itemID,
		Body:       text,
	}
	message.ID = id
	message.CreatedAt = at
	require.NoError(t, db.Create(&message).Error)
	return message
}
