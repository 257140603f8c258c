package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/models"
	apperrors "github.com/ufoundit-dev/ufoundit/pkg/errors"
)

const verificationCodeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CreateDropoffInput asks a custodian to accept a found item from its finder.
type CreateDropoffInput struct {
	FinderID    string
	ItemID      string
	CustodianID string
	Notes       string
}

// CreatePickupInput asks a custodian to hand a held item back to its owner.
type CreatePickupInput struct {
	OwnerID     string
	ItemID      string
	CustodianID string
	Notes       string
}

// RequestService owns the dropoff and pickup lifecycles. Status transitions
// run the shared state machine; completion side effects commit atomically
// with the transition so they happen exactly once.
type RequestService struct {
	db       *gorm.DB
	notifier *NotificationService
}

// NewRequestService constructs a RequestService.
func NewRequestService(db *gorm.DB, notifier *NotificationService) (*RequestService, error) {
	if db == nil {
		return nil, errors.New("request service: db is required")
	}
	if notifier == nil {
		return nil, errors.New("request service: notifier is required")
	}
	return &RequestService{db: db, notifier: notifier}, nil
}

// CreateDropoff opens a pending dropoff request for an active item.
func (s *RequestService) CreateDropoff(ctx context.Context, input CreateDropoffInput) (*models.DropoffRequest, error) {
	ctx = ensureContext(ctx)

	if err := s.checkItemAndCustodian(ctx, input.ItemID, input.CustodianID); err != nil {
		return nil, err
	}

	request := models.DropoffRequest{
		FinderID:    input.FinderID,
		ItemID:      input.ItemID,
		CustodianID: input.CustodianID,
		Notes:       strings.TrimSpace(input.Notes),
		Status:      models.RequestPending,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, fmt.Errorf("request service: create dropoff: %w", err)
	}
	return &request, nil
}

// CreatePickup opens a pending pickup request and mints its verification
// code. The code is generated server-side and returned to the requester; it
// is checked by custodian staff at handoff, not by the API.
func (s *RequestService) CreatePickup(ctx context.Context, input CreatePickupInput) (*models.PickupRequest, error) {
	ctx = ensureContext(ctx)

	if err := s.checkItemAndCustodian(ctx, input.ItemID, input.CustodianID); err != nil {
		return nil, err
	}

	code, err := newVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("request service: generate verification code: %w", err)
	}

	request := models.PickupRequest{
		OwnerID:          input.OwnerID,
		ItemID:           input.ItemID,
		CustodianID:      input.CustodianID,
		Notes:            strings.TrimSpace(input.Notes),
		Status:           models.RequestPending,
		VerificationCode: code,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, fmt.Errorf("request service: create pickup: %w", err)
	}
	return &request, nil
}

// ListDropoffsForUser returns the finder's dropoff requests, newest first.
func (s *RequestService) ListDropoffsForUser(ctx context.Context, finderID string) ([]models.DropoffRequest, error) {
	ctx = ensureContext(ctx)

	var rows []models.DropoffRequest
	if err := s.db.WithContext(ctx).
		Preload("Item").
		Preload("Custodian").
		Where("finder_id = ?", finderID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("request service: list dropoffs: %w", err)
	}
	return rows, nil
}

// ListPickupsForUser returns the owner's pickup requests, newest first. The
// verification code rides along so the owner can retrieve it any time before
// handoff.
func (s *RequestService) ListPickupsForUser(ctx context.Context, ownerID string) ([]models.PickupRequest, error) {
	ctx = ensureContext(ctx)

	var rows []models.PickupRequest
	if err := s.db.WithContext(ctx).
		Preload("Item").
		Preload("Custodian").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("request service: list pickups: %w", err)
	}
	return rows, nil
}

// AdminListDropoffs returns every dropoff request, optionally filtered by
// status, newest first.
func (s *RequestService) AdminListDropoffs(ctx context.Context, status models.RequestStatus) ([]models.DropoffRequest, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Finder").
		Preload("Item").
		Preload("Custodian")
	if status != "" {
		if !status.Valid() {
			return nil, apperrors.NewBadRequest("unknown request status filter")
		}
		query = query.Where("status = ?", status)
	}

	var rows []models.DropoffRequest
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("request service: admin list dropoffs: %w", err)
	}
	return rows, nil
}

// AdminListPickups returns every pickup request, optionally filtered by
// status, newest first.
func (s *RequestService) AdminListPickups(ctx context.Context, status models.RequestStatus) ([]models.PickupRequest, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Item").
		Preload("Custodian")
	if status != "" {
		if !status.Valid() {
			return nil, apperrors.NewBadRequest("unknown request status filter")
		}
		query = query.Where("status = ?", status)
	}

	var rows []models.PickupRequest
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("request service: admin list pickups: %w", err)
	}
	return rows, nil
}

// UpdateDropoffStatus moves a dropoff request along the state machine. On
// completion the item is deactivated in the same transaction; the removal
// broadcast and the finder's notification go out only after commit.
func (s *RequestService) UpdateDropoffStatus(ctx context.Context, requestID string, next models.RequestStatus) (*models.DropoffRequest, error) {
	ctx = ensureContext(ctx)

	if !next.Valid() {
		return nil, apperrors.NewBadRequest("unknown request status")
	}

	var request models.DropoffRequest
	var itemDeactivated bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Item").First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("request service: load dropoff: %w", err)
		}

		if !request.Status.CanTransitionTo(next) {
			return apperrors.ErrInvalidTransition
		}

		if err := tx.Model(&request).Update("status", next).Error; err != nil {
			return fmt.Errorf("request service: update dropoff status: %w", err)
		}
		request.Status = next

		if next == models.RequestCompleted {
			result := tx.Model(&models.Item{}).
				Where("id = ? AND is_active = ?", request.ItemID, true).
				Update("is_active", false)
			if result.Error != nil {
				return fmt.Errorf("request service: deactivate item: %w", result.Error)
			}
			itemDeactivated = result.RowsAffected > 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if itemDeactivated {
		s.notifier.ItemRemoved(request.ItemID)
	}
	if next.Terminal() || next == models.RequestApproved {
		if err := s.notifier.RequestResolved(ctx, request.FinderID, request.ItemID, request.Item.Title, next); err != nil {
			return nil, err
		}
	}
	return &request, nil
}

// UpdatePickupStatus moves a pickup request along the state machine. On
// completion the item is deactivated and marked returned in the same
// transaction; the removal broadcast and the owner's notification go out
// only after commit.
func (s *RequestService) UpdatePickupStatus(ctx context.Context, requestID string, next models.RequestStatus) (*models.PickupRequest, error) {
	ctx = ensureContext(ctx)

	if !next.Valid() {
		return nil, apperrors.NewBadRequest("unknown request status")
	}

	var request models.PickupRequest
	var itemDeactivated bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Item").First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("request service: load pickup: %w", err)
		}

		if !request.Status.CanTransitionTo(next) {
			return apperrors.ErrInvalidTransition
		}

		if err := tx.Model(&request).Update("status", next).Error; err != nil {
			return fmt.Errorf("request service: update pickup status: %w", err)
		}
		request.Status = next

		if next == models.RequestCompleted {
			result := tx.Model(&models.Item{}).
				Where("id = ? AND is_active = ?", request.ItemID, true).
				Updates(map[string]any{
					"is_active": false,
					"status":    models.ItemReturned,
				})
			if result.Error != nil {
				return fmt.Errorf("request service: deactivate item: %w", result.Error)
			}
			itemDeactivated = result.RowsAffected > 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if itemDeactivated {
		s.notifier.ItemRemoved(request.ItemID)
	}
	if next.Terminal() || next == models.RequestApproved {
		if err := s.notifier.RequestResolved(ctx, request.OwnerID, request.ItemID, request.Item.Title, next); err != nil {
			return nil, err
		}
	}
	return &request, nil
}

func (s *RequestService) checkItemAndCustodian(ctx context.Context, itemID, custodianID string) error {
	var item models.Item
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", itemID, true).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("request service: load item: %w", err)
	}

	var custodian models.Custodian
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", custodianID, true).
		First(&custodian).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("request service: load custodian: %w", err)
	}
	return nil
}

// newVerificationCode mints a short handoff code from the uppercase
// alphanumeric alphabet. Collisions across requests are acceptable; the code
// is scoped to one request and checked by a human.
func newVerificationCode() (string, error) {
	buf := make([]byte, verificationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
