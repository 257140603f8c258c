package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/auth"
	"github.com/ufoundit-dev/ufoundit/internal/models"
	apperrors "github.com/ufoundit-dev/ufoundit/pkg/errors"
)

// RegisterInput carries the payload for creating an account.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Role     string
}

// LoginInput carries the credentials presented at login.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult pairs an authenticated profile with its freshly issued token.
type AuthResult struct {
	User  *models.Profile `json:"user"`
	Token string          `json:"token"`
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	FullName *string
	Phone    *string
}

// PlatformStats summarizes the marketplace for the admin dashboard.
type PlatformStats struct {
	Users           int64 `json:"users"`
	ActiveItems     int64 `json:"active_items"`
	Messages        int64 `json:"messages"`
	PendingDropoffs int64 `json:"pending_dropoffs"`
	PendingPickups  int64 `json:"pending_pickups"`
}

// UserService owns accounts, credentials, and profile data.
type UserService struct {
	db  *gorm.DB
	jwt *auth.JWTService
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, jwt *auth.JWTService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	if jwt == nil {
		return nil, errors.New("user service: jwt service is required")
	}
	return &UserService{db: db, jwt: jwt}, nil
}

// Register creates an account and logs it in. Emails are unique and stored
// lowercased; the admin role cannot be self-assigned.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("password must be at least 8 characters")
	}

	role := strings.TrimSpace(input.Role)
	switch role {
	case "":
		role = models.RoleOwner
	case models.RoleOwner, models.RoleFinder:
	default:
		return nil, apperrors.NewBadRequest("role must be owner or finder")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("user service: check email: %w", err)
	}
	if count > 0 {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := models.Profile{
		Email:    email,
		Password: string(hash),
		FullName: strings.TrimSpace(input.FullName),
		Phone:    strings.TrimSpace(input.Phone),
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	return s.issueToken(&user)
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords produce the same error.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.Profile
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueToken(&user)
}

// Get returns one profile by id.
func (s *UserService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var user models.Profile
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, apperrors.NewBadRequest("full_name cannot be empty")
		}
		updates["full_name"] = name
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: update profile: %w", err)
	}
	return s.Get(ctx, userID)
}

// AdminContact returns the platform's admin profile for public contact info.
// The password hash never leaves the model's json:"-" tag, so the profile is
// safe to expose.
func (s *UserService) AdminContact(ctx context.Context) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var admin models.Profile
	if err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleAdmin).
		Order("created_at ASC").
		First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load admin: %w", err)
	}
	return &admin, nil
}

// AdminDelete removes a non-admin account. The account's items are
// deactivated so they disappear from public listings.
func (s *UserService) AdminDelete(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.Profile
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("user service: load user: %w", err)
		}
		if user.IsAdmin() {
			return apperrors.ErrForbidden
		}

		if err := tx.Model(&models.Item{}).
			Where("user_id = ?", userID).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("user service: deactivate items: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("user service: delete notifications: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("user service: delete user: %w", err)
		}
		return nil
	})
}

// AdminList returns every profile, newest first.
func (s *UserService) AdminList(ctx context.Context, limit, offset int) ([]models.Profile, int64, error) {
	ctx = ensureContext(ctx)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var users []models.Profile
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}
	return users, total, nil
}

// Stats aggregates platform counters for the admin dashboard.
func (s *UserService) Stats(ctx context.Context) (*PlatformStats, error) {
	ctx = ensureContext(ctx)

	stats := &PlatformStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Profile{}).Count(&stats.Users).Error; err != nil {
		return nil, fmt.Errorf("user service: count users: %w", err)
	}
	if err := db.Model(&models.Item{}).Where("is_active = ?", true).Count(&stats.ActiveItems).Error; err != nil {
		return nil, fmt.Errorf("user service: count items: %w", err)
	}
	if err := db.Model(&models.Message{}).Count(&stats.Messages).Error; err != nil {
		return nil, fmt.Errorf("user service: count messages: %w", err)
	}
	if err := db.Model(&models.DropoffRequest{}).Where("status = ?", models.RequestPending).Count(&stats.PendingDropoffs).Error; err != nil {
		return nil, fmt.Errorf("user service: count dropoffs: %w", err)
	}
	if err := db.Model(&models.PickupRequest{}).Where("status = ?", models.RequestPending).Count(&stats.PendingPickups).Error; err != nil {
		return nil, fmt.Errorf("user service: count pickups: %w", err)
	}
	return stats, nil
}

func (s *UserService) issueToken(user *models.Profile) (*AuthResult, error) {
	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID:   user.ID,
		FullName: user.FullName,
		Role:     user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("user service: issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
