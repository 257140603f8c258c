package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ufoundit-dev/ufoundit/internal/services"
	"github.com/ufoundit-dev/ufoundit/pkg/response"
)

// MessageHandler exposes messaging, conversations, and notifications.
type MessageHandler struct {
	messages      *services.MessageService
	notifications *services.NotificationService
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages *services.MessageService, notifications *services.NotificationService) *MessageHandler {
	return &MessageHandler{messages: messages, notifications: notifications}
}

type sendMessageRequest struct {
	ReceiverID string  `json:"receiver_id" validate:"required,uuid"`
	ItemID     *string `json:"item_id" validate:"omitempty,uuid"`
	Text       string  `json:"message_text" validate:"required"`
}

// Send persists a message to another user.
func (h *MessageHandler) Send(c *gin.Context) {
	payload, err := bindAndValidate[sendMessageRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	message, err := h.messages.Send(c.Request.Context(), services.SendMessageInput{
		SenderID:   currentUserID(c),
		ReceiverID: payload.ReceiverID,
		ItemID:     payload.ItemID,
		Text:       payload.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, message)
}

// Conversations returns the caller's derived conversation threads.
func (h *MessageHandler) Conversations(c *gin.Context) {
	conversations, err := h.messages.ListConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, conversations)
}

// Thread returns the chronological messages with one counterparty, scoped by
// the optional item_id query parameter.
func (h *MessageHandler) Thread(c *gin.Context) {
	var itemID *string
	if raw := c.Query("item_id"); raw != "" {
		itemID = &raw
	}

	messages, err := h.messages.ListThread(c.Request.Context(), currentUserID(c), c.Param("userId"), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, messages)
}

// Notifications returns the caller's recent notifications.
func (h *MessageHandler) Notifications(c *gin.Context) {
	rows, err := h.notifications.ListForUser(c.Request.Context(), currentUserID(c), parseIntQuery(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// MarkNotificationRead flips the read flag on one of the caller's
// notifications.
func (h *MessageHandler) MarkNotificationRead(c *gin.Context) {
	notification, err := h.notifications.MarkRead(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, notification)
}
