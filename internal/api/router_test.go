package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/auth"
	"github.com/ufoundit-dev/ufoundit/internal/database/testutil"
	"github.com/ufoundit-dev/ufoundit/internal/models"
	"github.com/ufoundit-dev/ufoundit/internal/presence"
	"github.com/ufoundit-dev/ufoundit/internal/realtime"
	"github.com/ufoundit-dev/ufoundit/internal/services"
)

type apiFixture struct {
	router *gin.Engine
	db     *gorm.DB
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	jwt, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "ufoundit"})
	require.NoError(t, err)

	hub := realtime.NewHub(presence.NewDirectory())

	notifications, err := services.NewNotificationService(db, hub)
	require.NoError(t, err)
	users, err := services.NewUserService(db, jwt)
	require.NoError(t, err)
	items, err := services.NewItemService(db, notifications)
	require.NoError(t, err)
	messages, err := services.NewMessageService(db, notifications)
	require.NoError(t, err)
	custodians, err := services.NewCustodianService(db)
	require.NoError(t, err)
	requests, err := services.NewRequestService(db, notifications)
	require.NoError(t, err)

	router := NewRouter(Dependencies{
		DB:            db,
		JWT:           jwt,
		Hub:           hub,
		Users:         users,
		Items:         items,
		Messages:      messages,
		Notifications: notifications,
		Custodians:    custodians,
		Requests:      requests,
	})
	return &apiFixture{router: router, db: db}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func (f *apiFixture) register(t *testing.T, email, name, role string) (userID, token string) {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":     email,
		"password":  "correct-horse",
		"full_name": name,
		"role":      role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		User  models.Profile `json:"user"`
		Token string         `json:"token"`
	}
	decodeData(t, rec, &result)
	return result.User.ID, result.Token
}

func (f *apiFixture) promote(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Profile{}).
		Where("id = ?", userID).
		Update("role", models.RoleAdmin).Error)
}

func TestHealthAndUnmatchedRoutes(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestAuthGuards(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/profile/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	_, token := f.register(t, "user@example.com", "Regular User", "owner")
	rec = f.do(t, http.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLostAndFoundFlow(t *testing.T) {
	f := newAPIFixture(t)

	ownerID, ownerToken := f.register(t, "owner@example.com", "Olive Owner", "owner")
	_, finderToken := f.register(t, "finder@example.com", "Fred Finder", "finder")
	adminID, adminToken := f.register(t, "admin@example.com", "Ada Admin", "owner")
	f.promote(t, adminID)
	// Re-login so the admin token carries the admin role.
	rec := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var adminLogin struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &adminLogin)
	adminToken = adminLogin.Token

	// The owner reports a lost wallet.
	rec = f.do(t, http.MethodPost, "/api/items", ownerToken, gin.H{
		"title":           "Brown Wallet",
		"description":     "Lost near the library",
		"category":        "accessories",
		"status":          "lost",
		"location":        "Main Library",
		"date_lost_found": time.Now().UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item models.Item
	decodeData(t, rec, &item)

	// The listing is publicly visible and searchable.
	rec = f.do(t, http.MethodGet, "/api/search?search=wallet", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), item.ID)

	// The finder messages the owner about the wallet.
	rec = f.do(t, http.MethodPost, "/api/messages", finderToken, gin.H{
		"receiver_id":  ownerID,
		"item_id":      item.ID,
		"message_text": "I found your wallet at the front desk",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// The owner sees the conversation and the notification.
	rec = f.do(t, http.MethodGet, "/api/messages/conversations", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var conversations []services.ConversationSummary
	decodeData(t, rec, &conversations)
	require.Len(t, conversations, 1)
	require.Equal(t, "Brown Wallet", conversations[0].ItemTitle)

	rec = f.do(t, http.MethodGet, "/api/messages/notifications", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notifications []models.Notification
	decodeData(t, rec, &notifications)
	require.Len(t, notifications, 1)

	rec = f.do(t, http.MethodPut,
		fmt.Sprintf("/api/messages/notifications/%s/read", notifications[0].ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The admin registers a custodian desk.
	rec = f.do(t, http.MethodPost, "/api/custodians", adminToken, gin.H{
		"name":     "Front Desk",
		"location": "Campus Center",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var custodian models.Custodian
	decodeData(t, rec, &custodian)

	// The owner asks to pick the wallet up and receives a verification code.
	rec = f.do(t, http.MethodPost, "/api/custodians/pickup", ownerToken, gin.H{
		"item_id":      item.ID,
		"custodian_id": custodian.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var pickup models.PickupRequest
	decodeData(t, rec, &pickup)
	require.Regexp(t, `^[A-Z0-9]{6}$`, pickup.VerificationCode)

	// Admin approves then completes the pickup.
	rec = f.do(t, http.MethodPut, "/api/custodians/admin/pickup/"+pickup.ID, adminToken,
		gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/api/custodians/admin/pickup/"+pickup.ID, adminToken,
		gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Completing twice conflicts.
	rec = f.do(t, http.MethodPut, "/api/custodians/admin/pickup/"+pickup.ID, adminToken,
		gin.H{"status": "completed"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// The item is returned and gone from public listings.
	rec = f.do(t, http.MethodGet, "/api/items/"+item.ID, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/items/user/my-items", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []models.Item
	decodeData(t, rec, &mine)
	require.Len(t, mine, 1)
	require.Equal(t, models.ItemReturned, mine[0].Status)
	require.False(t, mine[0].IsActive)
}

func TestAdminContactEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/admin/admin-user", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	adminID, _ := f.register(t, "admin@example.com", "Ada Admin", "owner")
	f.promote(t, adminID)

	rec = f.do(t, http.MethodGet, "/api/admin/admin-user", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Ada Admin")
	// The password hash must never appear in any profile payload.
	require.NotContains(t, rec.Body.String(), "password")
}
