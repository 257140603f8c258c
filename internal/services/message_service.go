package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/models"
	apperrors "github.com/ufoundit-dev/ufoundit/pkg/errors"
)

const maxMessageLength = 4000

// GeneralInquiryLabel stands in for the item title on threads that are not
// tied to any listing.
const GeneralInquiryLabel = "General inquiry"

// SendMessageInput carries the payload required to send a message.
type SendMessageInput struct {
	SenderID   string
	ReceiverID string
	ItemID     *string
	Text       string
}

// ConversationSummary is one derived conversation thread from the caller's
// viewpoint: the counterparty, the optional item, and the latest message.
type ConversationSummary struct {
	OtherUserID   string    `json:"other_user_id"`
	OtherUserName string    `json:"other_user_name"`
	ItemID        *string   `json:"item_id"`
	ItemTitle     string    `json:"item_title"`
	MessageText   string    `json:"message_text"`
	SenderID      string    `json:"sender_id"`
	MessageID     string    `json:"message_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// MessageService persists messages and derives conversation threads from the
// flat message log. Conversations are recomputed per request, never cached.
type MessageService struct {
	db       *gorm.DB
	notifier *NotificationService
}

// NewMessageService constructs a MessageService.
func NewMessageService(db *gorm.DB, notifier *NotificationService) (*MessageService, error) {
	if db == nil {
		return nil, errors.New("message service: db is required")
	}
	if notifier == nil {
		return nil, errors.New("message service: notifier is required")
	}
	return &MessageService{db: db, notifier: notifier}, nil
}

// Send persists a message and fans out the receiver's notification. Brand-new
// (counterparty, item) pairs and item-less messages are accepted without any
// prior-thread precondition.
func (s *MessageService) Send(ctx context.Context, input SendMessageInput) (*models.Message, error) {
	ctx = ensureContext(ctx)

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.NewBadRequest("message_text is required")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, apperrors.NewBadRequest("message_text exceeds maximum length")
	}
	if input.SenderID == input.ReceiverID {
		return nil, apperrors.NewBadRequest("cannot send a message to yourself")
	}

	var sender models.Profile
	if err := s.db.WithContext(ctx).First(&sender, "id = ?", input.SenderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("message service: load sender: %w", err)
	}

	var receiver models.Profile
	if err := s.db.WithContext(ctx).First(&receiver, "id = ?", input.ReceiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("message service: load receiver: %w", err)
	}

	if input.ItemID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Item{}).
			Where("id = ?", *input.ItemID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("message service: check item: %w", err)
		}
		if count == 0 {
			return nil, apperrors.ErrNotFound
		}
	}

	message := models.Message{
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		ItemID:     input.ItemID,
		Body:       text,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, fmt.Errorf("message service: create message: %w", err)
	}

	if err := s.notifier.MessageReceived(ctx, message, sender.FullName); err != nil {
		return nil, err
	}

	return &message, nil
}

// ListConversations derives the caller's conversation threads: one entry per
// distinct (counterparty, item-or-nil) pair carrying that thread's most
// recent message, ordered by latest message time descending. Messages with
// identical timestamps order by message id so the result is deterministic.
func (s *MessageService) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("message service: user id is required")
	}

	var rows []models.Message
	if err := s.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Preload("Item").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("message service: load messages: %w", err)
	}

	// Rows arrive newest-first, so the first message seen for a grouping key
	// is that thread's latest and the output stays ordered by recency.
	seen := make(map[string]struct{}, len(rows))
	summaries := make([]ConversationSummary, 0, len(rows))
	for _, row := range rows {
		other := row.Sender
		otherID := row.SenderID
		if row.SenderID == userID {
			other = row.Receiver
			otherID = row.ReceiverID
		}

		key := otherID
		if row.ItemID != nil {
			key += "|" + *row.ItemID
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		title := GeneralInquiryLabel
		if row.Item != nil {
			title = row.Item.Title
		}

		summaries = append(summaries, ConversationSummary{
			OtherUserID:   otherID,
			OtherUserName: other.FullName,
			ItemID:        row.ItemID,
			ItemTitle:     title,
			MessageText:   row.Body,
			SenderID:      row.SenderID,
			MessageID:     row.ID,
			CreatedAt:     row.CreatedAt,
		})
	}

	return summaries, nil
}

// ListThread returns the chronological messages between the caller and one
// counterparty, scoped to a single item (or to the item-less thread when
// itemID is nil).
func (s *MessageService) ListThread(ctx context.Context, userID, otherID string, itemID *string) ([]models.Message, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID)

	if itemID != nil {
		query = query.Where("item_id = ?", *itemID)
	} else {
		query = query.Where("item_id IS NULL")
	}

	var rows []models.Message
	if err := query.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("message service: load thread: %w", err)
	}
	return rows, nil
}
