package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/telbinapp/telbin-backend/internal/models"
)

func publishSubmission(t *testing.T, feed *FeedService, userID uuid.UUID) {
	t.Helper()
	feed.Publish(&models.Submission{
		ID:         uuid.New(),
		UserID:     userID,
		TrashClass: models.ClassPlastic,
		Location:   "Library",
		CreatedAt:  time.Now().UTC(),
	})
}

func TestFeedListExcludesBlockedUsers(t *testing.T) {
	db := testDB(t)
	feed := NewFeedService(db)
	ledger := NewLedgerService(db)
	ms := NewModerationService(db)

	viewer := createTestUser(t, db, ledger)
	friendly := createTestUser(t, db, ledger)
	blocked := createTestUser(t, db, ledger)

	publishSubmission(t, feed, friendly)
	publishSubmission(t, feed, blocked)

	items, err := feed.List(viewer, 20)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, ms.BlockUser(viewer, blocked))

	items, err = feed.List(viewer, 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestFeedPublishUsesDisplayName(t *testing.T) {
	db := testDB(t)
	feed := NewFeedService(db)
	ledger := NewLedgerService(db)
	userID := createTestUser(t, db, ledger)

	publishSubmission(t, feed, userID)

	items, err := feed.List(uuid.New(), 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Test User", items[0].DisplayName)

	// Unknown users fall back to the anonymous display name.
	publishSubmission(t, feed, uuid.New())
	items, err = feed.List(uuid.New(), 20)
	require.NoError(t, err)
	require.Len(t, items, 2)
	names := []string{items[0].DisplayName, items[1].DisplayName}
	require.Contains(t, names, "Eco Warrior")
}

func TestFeedListClampsLimit(t *testing.T) {
	db := testDB(t)
	feed := NewFeedService(db)
	ledger := NewLedgerService(db)
	userID := createTestUser(t, db, ledger)

	for i := 0; i < 25; i++ {
		publishSubmission(t, feed, userID)
	}

	items, err := feed.List(uuid.New(), 500)
	require.NoError(t, err)
	require.Len(t, items, 20)
}
