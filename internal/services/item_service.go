package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/models"
	apperrors "github.com/ufoundit-dev/ufoundit/pkg/errors"
)

// CreateItemInput carries the payload required to report a lost or found item.
type CreateItemInput struct {
	UserID        string
	Title         string
	Description   string
	Category      string
	Status        models.ItemStatus
	Location      string
	DateLostFound time.Time
	RewardOffered float64
}

// UpdateItemInput carries a partial update. Nil fields are left untouched.
type UpdateItemInput struct {
	Title         *string
	Description   *string
	Category      *string
	Status        *models.ItemStatus
	Location      *string
	DateLostFound *time.Time
	RewardOffered *float64
}

// ItemFilter narrows public item listings. Zero values mean "no constraint".
type ItemFilter struct {
	Status   models.ItemStatus
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ItemService owns item listings and their live feed announcements.
type ItemService struct {
	db       *gorm.DB
	notifier *NotificationService
}

// NewItemService constructs an ItemService.
func NewItemService(db *gorm.DB, notifier *NotificationService) (*ItemService, error) {
	if db == nil {
		return nil, errors.New("item service: db is required")
	}
	if notifier == nil {
		return nil, errors.New("item service: notifier is required")
	}
	return &ItemService{db: db, notifier: notifier}, nil
}

// Create reports a new item and announces it to every connected client.
func (s *ItemService) Create(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	ctx = ensureContext(ctx)

	if !input.Status.Valid() {
		return nil, apperrors.NewBadRequest("status must be one of lost, found, matched, returned")
	}

	var owner models.Profile
	if err := s.db.WithContext(ctx).First(&owner, "id = ?", input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("item service: load owner: %w", err)
	}

	item := models.Item{
		UserID:        input.UserID,
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Category:      strings.TrimSpace(input.Category),
		Status:        input.Status,
		Location:      strings.TrimSpace(input.Location),
		DateLostFound: input.DateLostFound,
		RewardOffered: input.RewardOffered,
		IsActive:      true,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("item service: create item: %w", err)
	}

	s.notifier.ItemPosted(item, owner.FullName)
	return &item, nil
}

// Get returns one active item with its owner preloaded. Admins see inactive
// items through the admin listing instead.
func (s *ItemService) Get(ctx context.Context, itemID string) (*models.Item, error) {
	ctx = ensureContext(ctx)

	var item models.Item
	if err := s.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ? AND is_active = ?", itemID, true).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("item service: load item: %w", err)
	}
	return &item, nil
}

// List returns active items matching the filter, newest first, plus the total
// match count for pagination.
func (s *ItemService) List(ctx context.Context, filter ItemFilter) ([]models.Item, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Item{}).Where("is_active = ?", true)

	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, 0, apperrors.NewBadRequest("unknown item status filter")
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR location LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("item service: count items: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var items []models.Item
	if err := query.
		Preload("Owner").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("item service: list items: %w", err)
	}
	return items, total, nil
}

// ListForUser returns every item the user reported, active or not.
func (s *ItemService) ListForUser(ctx context.Context, userID string) ([]models.Item, error) {
	ctx = ensureContext(ctx)

	var items []models.Item
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("item service: list user items: %w", err)
	}
	return items, nil
}

// Update applies a partial update to an item. Only the owner or an admin may
// edit; everyone else gets a forbidden error regardless of field.
func (s *ItemService) Update(ctx context.Context, itemID, actorID string, actorIsAdmin bool, input UpdateItemInput) (*models.Item, error) {
	ctx = ensureContext(ctx)

	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("item service: load item: %w", err)
	}

	if item.UserID != actorID && !actorIsAdmin {
		return nil, apperrors.ErrForbidden
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewBadRequest("status must be one of lost, found, matched, returned")
		}
		updates["status"] = *input.Status
	}
	if input.Location != nil {
		updates["location"] = strings.TrimSpace(*input.Location)
	}
	if input.DateLostFound != nil {
		updates["date_lost_found"] = *input.DateLostFound
	}
	if input.RewardOffered != nil {
		updates["reward_offered"] = *input.RewardOffered
	}
	if len(updates) == 0 {
		return &item, nil
	}

	if err := s.db.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("item service: update item: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, fmt.Errorf("item service: reload item: %w", err)
	}
	return &item, nil
}

// Deactivate soft-deletes an item and broadcasts exactly one removal event.
// Deactivating an already inactive item is a no-op that emits nothing.
func (s *ItemService) Deactivate(ctx context.Context, itemID, actorID string, actorIsAdmin bool) error {
	ctx = ensureContext(ctx)

	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("item service: load item: %w", err)
	}

	if item.UserID != actorID && !actorIsAdmin {
		return apperrors.ErrForbidden
	}
	if !item.IsActive {
		return nil
	}

	result := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND is_active = ?", itemID, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("item service: deactivate item: %w", result.Error)
	}
	// The guarded update lost a race with a concurrent deactivation; the
	// winner already broadcast the removal.
	if result.RowsAffected == 0 {
		return nil
	}

	s.notifier.ItemRemoved(itemID)
	return nil
}

// AdminList returns every item regardless of active flag, newest first.
func (s *ItemService) AdminList(ctx context.Context, limit, offset int) ([]models.Item, int64, error) {
	ctx = ensureContext(ctx)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Item{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("item service: count all items: %w", err)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var items []models.Item
	if err := s.db.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("item service: admin list items: %w", err)
	}
	return items, total, nil
}

// Purge hard-deletes an inactive item and its dependent rows. Active items
// must be deactivated first so clients have already seen the removal event.
func (s *ItemService) Purge(ctx context.Context, itemID string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("item service: load item: %w", err)
		}
		if item.IsActive {
			return apperrors.NewBadRequest("deactivate the item before purging it")
		}

		if err := tx.Where("item_id = ?", itemID).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("item service: purge messages: %w", err)
		}
		if err := tx.Where("item_id = ?", itemID).Delete(&models.DropoffRequest{}).Error; err != nil {
			return fmt.Errorf("item service: purge dropoff requests: %w", err)
		}
		if err := tx.Where("item_id = ?", itemID).Delete(&models.PickupRequest{}).Error; err != nil {
			return fmt.Errorf("item service: purge pickup requests: %w", err)
		}
		if err := tx.Where("related_item_id = ?", itemID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("item service: purge notifications: %w", err)
		}
		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("item service: purge item: %w", err)
		}
		return nil
	})
}
