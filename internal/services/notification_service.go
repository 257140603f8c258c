package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/models"
	"github.com/ufoundit-dev/ufoundit/internal/realtime"
	apperrors "github.com/ufoundit-dev/ufoundit/pkg/errors"
)

// Broadcaster is the transport surface the fan-out layer pushes through.
// Delivery is fire-and-forget; a false return from EmitToUser means the
// target had no live endpoint and the push degraded to "persisted only".
type Broadcaster interface {
	EmitToUser(userID, event string, data any) bool
	EmitAll(event string, data any)
}

// NotificationService is the notification fan-out layer: it durably persists
// notification rows and then pushes transient realtime events to whoever is
// connected. Persistence must succeed even when nobody is listening; pushes
// are best-effort and never part of the caller's error path.
type NotificationService struct {
	db  *gorm.DB
	hub Broadcaster
}

// NewNotificationService constructs a NotificationService. The hub may be nil,
// in which case every push is skipped and only durable writes happen.
func NewNotificationService(db *gorm.DB, hub Broadcaster) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{db: db, hub: hub}, nil
}

// ItemPosted broadcasts a live "new item" alert to every connected client.
// No durable row is written: the listing itself is the durable record.
func (s *NotificationService) ItemPosted(item models.Item, ownerName string) {
	if s.hub == nil {
		return
	}
	s.hub.EmitAll(realtime.EventNewItem, realtime.ItemPayload{
		ID:        item.ID,
		Title:     item.Title,
		Category:  item.Category,
		Status:    string(item.Status),
		Location:  item.Location,
		OwnerID:   item.UserID,
		OwnerName: ownerName,
		CreatedAt: item.CreatedAt,
	})
}

// ItemRemoved broadcasts a single "item deleted" event so clients purge the
// item from any active listing or notification view.
func (s *NotificationService) ItemRemoved(itemID string) {
	if s.hub == nil {
		return
	}
	s.hub.EmitAll(realtime.EventItemDeleted, realtime.ItemDeletedPayload{ID: itemID})
}

// MessageReceived persists a notification for the receiver and then pushes a
// live new_message event if the receiver is connected. The durable write is
// the correctness-bearing step; the push is not awaited for it.
func (s *NotificationService) MessageReceived(ctx context.Context, message models.Message, senderName string) error {
	ctx = ensureContext(ctx)

	notification := models.Notification{
		UserID:        message.ReceiverID,
		Title:         "New Message",
		Body:          fmt.Sprintf("You have a new message from %s", senderName),
		Type:          models.NotificationMessage,
		RelatedItemID: message.ItemID,
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("notification service: persist message notification: %w", err)
	}

	if s.hub != nil {
		s.hub.EmitToUser(message.ReceiverID, realtime.EventNewMessage, realtime.ChatPayload{
			SenderID:   message.SenderID,
			SenderName: senderName,
			ReceiverID: message.ReceiverID,
			ItemID:     message.ItemID,
			Text:       message.Body,
			CreatedAt:  message.CreatedAt,
		})
	}
	return nil
}

// RequestResolved persists a notification about a request reaching a new
// status and pushes it to the requester if connected.
func (s *NotificationService) RequestResolved(ctx context.Context, userID, itemID, itemTitle string, status models.RequestStatus) error {
	ctx = ensureContext(ctx)

	notification := models.Notification{
		UserID:        userID,
		Title:         "Request Updated",
		Body:          fmt.Sprintf("Your request for %q is now %s", itemTitle, status),
		Type:          models.NotificationRequest,
		RelatedItemID: &itemID,
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("notification service: persist request notification: %w", err)
	}

	if s.hub != nil {
		s.hub.EmitToUser(userID, realtime.EventNotification, notification)
	}
	return nil
}

// ListForUser returns the user's most recent notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("notification service: user id is required")
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var rows []models.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}
	return rows, nil
}

// MarkRead flips the read flag on a notification owned by the user.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&notification).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("notification service: mark read: %w", err)
	}

	notification.IsRead = true
	notification.ReadAt = &now
	return &notification, nil
}
