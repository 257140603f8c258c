package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/models"
	apperrors "github.com/ufoundit-dev/ufoundit/pkg/errors"
)

// CustodianInput carries the fields for creating or replacing a custodian.
type CustodianInput struct {
	Name           string
	Location       string
	Address        string
	Phone          string
	Email          string
	OperatingHours string
}

// CustodianService manages the registry of physical handoff locations.
type CustodianService struct {
	db *gorm.DB
}

// NewCustodianService constructs a CustodianService.
func NewCustodianService(db *gorm.DB) (*CustodianService, error) {
	if db == nil {
		return nil, errors.New("custodian service: db is required")
	}
	return &CustodianService{db: db}, nil
}

// List returns active custodians ordered by name.
func (s *CustodianService) List(ctx context.Context) ([]models.Custodian, error) {
	ctx = ensureContext(ctx)

	var rows []models.Custodian
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("custodian service: list custodians: %w", err)
	}
	return rows, nil
}

// Get returns one active custodian.
func (s *CustodianService) Get(ctx context.Context, id string) (*models.Custodian, error) {
	ctx = ensureContext(ctx)

	var custodian models.Custodian
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&custodian).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("custodian service: load custodian: %w", err)
	}
	return &custodian, nil
}

// Create registers a new custodian location.
func (s *CustodianService) Create(ctx context.Context, input CustodianInput) (*models.Custodian, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}

	custodian := models.Custodian{
		Name:           name,
		Location:       strings.TrimSpace(input.Location),
		Address:        strings.TrimSpace(input.Address),
		Phone:          strings.TrimSpace(input.Phone),
		Email:          strings.TrimSpace(input.Email),
		OperatingHours: strings.TrimSpace(input.OperatingHours),
		IsActive:       true,
	}
	if err := s.db.WithContext(ctx).Create(&custodian).Error; err != nil {
		return nil, fmt.Errorf("custodian service: create custodian: %w", err)
	}
	return &custodian, nil
}

// Update replaces the editable fields of a custodian.
func (s *CustodianService) Update(ctx context.Context, id string, input CustodianInput) (*models.Custodian, error) {
	ctx = ensureContext(ctx)

	var custodian models.Custodian
	if err := s.db.WithContext(ctx).First(&custodian, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("custodian service: load custodian: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}

	if err := s.db.WithContext(ctx).Model(&custodian).Updates(map[string]any{
		"name":            name,
		"location":        strings.TrimSpace(input.Location),
		"address":         strings.TrimSpace(input.Address),
		"phone":           strings.TrimSpace(input.Phone),
		"email":           strings.TrimSpace(input.Email),
		"operating_hours": strings.TrimSpace(input.OperatingHours),
	}).Error; err != nil {
		return nil, fmt.Errorf("custodian service: update custodian: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&custodian, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("custodian service: reload custodian: %w", err)
	}
	return &custodian, nil
}

// Deactivate hides a custodian from listings and new requests. Existing
// requests referencing it keep working.
func (s *CustodianService) Deactivate(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Custodian{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("custodian service: deactivate custodian: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
