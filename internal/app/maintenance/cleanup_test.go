package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/app"
	"github.com/ufoundit-dev/ufoundit/internal/database/testutil"
	"github.com/ufoundit-dev/ufoundit/internal/models"
)

func seedNotification(t *testing.T, db *gorm.DB, userID string, read bool, age time.Duration) models.Notification {
	t.Helper()

	n := models.Notification{
		UserID: userID,
		Title:  "old news",
		Type:   models.NotificationItem,
		IsRead: read,
	}
	n.CreatedAt = time.Now().UTC().Add(-age)
	require.NoError(t, db.Create(&n).Error)
	return n
}

func TestRunOncePrunesAgedRows(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	user := models.Profile{Email: "u@example.com", Password: "x", FullName: "User"}
	require.NoError(t, db.Create(&user).Error)

	// Read and old enough: pruned. Unread or fresh: kept.
	seedNotification(t, db, user.ID, true, 40*24*time.Hour)
	keptUnread := seedNotification(t, db, user.ID, false, 40*24*time.Hour)
	keptFresh := seedNotification(t, db, user.ID, true, 5*24*time.Hour)

	item := models.Item{
		UserID: user.ID, Title: "Wallet", Description: "d", Category: "c",
		Status: models.ItemLost, Location: "l", IsActive: false,
	}
	require.NoError(t, db.Create(&item).Error)
	custodian := models.Custodian{Name: "Desk", IsActive: true}
	require.NoError(t, db.Create(&custodian).Error)

	oldRequest := models.DropoffRequest{
		FinderID: user.ID, ItemID: item.ID, CustodianID: custodian.ID,
		Status: models.RequestCompleted,
	}
	require.NoError(t, db.Create(&oldRequest).Error)
	require.NoError(t, db.Model(&oldRequest).
		UpdateColumn("updated_at", time.Now().UTC().Add(-120*24*time.Hour)).Error)

	pendingRequest := models.DropoffRequest{
		FinderID: user.ID, ItemID: item.ID, CustodianID: custodian.ID,
		Status: models.RequestPending,
	}
	require.NoError(t, db.Create(&pendingRequest).Error)
	require.NoError(t, db.Model(&pendingRequest).
		UpdateColumn("updated_at", time.Now().UTC().Add(-120*24*time.Hour)).Error)

	cleaner, err := NewCleaner(db, app.MaintenanceConfig{
		Enabled:                   true,
		NotificationRetentionDays: 30,
		RequestRetentionDays:      90,
	})
	require.NoError(t, err)

	require.NoError(t, cleaner.RunOnce(context.Background()))

	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 2)
	ids := []string{notifications[0].ID, notifications[1].ID}
	require.Contains(t, ids, keptUnread.ID)
	require.Contains(t, ids, keptFresh.ID)

	// Pending requests survive any age; terminal aged ones are gone.
	var requests []models.DropoffRequest
	require.NoError(t, db.Find(&requests).Error)
	require.Len(t, requests, 1)
	require.Equal(t, pendingRequest.ID, requests[0].ID)
}

func TestRunOnceDisabledRetention(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	user := models.Profile{Email: "u@example.com", Password: "x", FullName: "User"}
	require.NoError(t, db.Create(&user).Error)
	seedNotification(t, db, user.ID, true, 400*24*time.Hour)

	cleaner, err := NewCleaner(db, app.MaintenanceConfig{Enabled: true})
	require.NoError(t, err)
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
