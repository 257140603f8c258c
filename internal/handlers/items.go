package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ufoundit-dev/ufoundit/internal/models"
	"github.com/ufoundit-dev/ufoundit/internal/services"
	"github.com/ufoundit-dev/ufoundit/pkg/response"
)

// ItemHandler exposes item listings and their lifecycle.
type ItemHandler struct {
	items *services.ItemService
}

// NewItemHandler constructs an ItemHandler.
func NewItemHandler(items *services.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

type createItemRequest struct {
	Title         string    `json:"title" validate:"required,max=255"`
	Description   string    `json:"description" validate:"required"`
	Category      string    `json:"category" validate:"required,max=64"`
	Status        string    `json:"status" validate:"required,oneof=lost found"`
	Location      string    `json:"location" validate:"required,max=255"`
	DateLostFound time.Time `json:"date_lost_found" validate:"required"`
	RewardOffered float64   `json:"reward_offered" validate:"gte=0"`
}

type updateItemRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description   *string    `json:"description" validate:"omitempty,min=1"`
	Category      *string    `json:"category" validate:"omitempty,min=1,max=64"`
	Status        *string    `json:"status" validate:"omitempty,oneof=lost found matched returned"`
	Location      *string    `json:"location" validate:"omitempty,min=1,max=255"`
	DateLostFound *time.Time `json:"date_lost_found"`
	RewardOffered *float64   `json:"reward_offered" validate:"omitempty,gte=0"`
}

// Create reports a new lost or found item.
func (h *ItemHandler) Create(c *gin.Context) {
	payload, err := bindAndValidate[createItemRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.items.Create(c.Request.Context(), services.CreateItemInput{
		UserID:        currentUserID(c),
		Title:         payload.Title,
		Description:   payload.Description,
		Category:      payload.Category,
		Status:        models.ItemStatus(payload.Status),
		Location:      payload.Location,
		DateLostFound: payload.DateLostFound,
		RewardOffered: payload.RewardOffered,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// List returns active items filtered by the query parameters.
func (h *ItemHandler) List(c *gin.Context) {
	filter := services.ItemFilter{
		Status:   models.ItemStatus(c.Query("status")),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    parseIntQuery(c, "limit", 20),
		Offset:   parseIntQuery(c, "offset", 0),
	}

	items, total, err := h.items.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Total:  int(total),
	})
}

// Get returns one active item.
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.items.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Mine returns every item the caller reported, active or not.
func (h *ItemHandler) Mine(c *gin.Context) {
	items, err := h.items.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Update applies a partial update to an item.
func (h *ItemHandler) Update(c *gin.Context) {
	payload, err := bindAndValidate[updateItemRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	input := services.UpdateItemInput{
		Title:         payload.Title,
		Description:   payload.Description,
		Category:      payload.Category,
		Location:      payload.Location,
		DateLostFound: payload.DateLostFound,
		RewardOffered: payload.RewardOffered,
	}
	if payload.Status != nil {
		status := models.ItemStatus(*payload.Status)
		input.Status = &status
	}

	item, err := h.items.Update(c.Request.Context(), c.Param("id"), currentUserID(c), currentUserIsAdmin(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Delete soft-deletes an item.
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.items.Deactivate(c.Request.Context(), c.Param("id"), currentUserID(c), currentUserIsAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
