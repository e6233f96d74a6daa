package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/telbinapp/telbin-backend/internal/dto"
	"gorm.io/gorm"
)

func setPoints(t *testing.T, db *gorm.DB, ledger *LedgerService, total int) {
	t.Helper()
	// Raise the total directly; the engine only reads it.
	require.NoError(t, db.Exec("UPDATE ledgers SET total_points = ?", total).Error)
}

func TestEvaluateAwardsAllCrossedTiers(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	medals := NewMedalService(db, ledger, testBus(t))
	userID := createTestUser(t, db, ledger)

	// One jump from 0 to 3500 crosses bronze, silver and gold at once.
	setPoints(t, db, ledger, 3500)

	awarded, err := medals.Evaluate(userID)
	require.NoError(t, err)
	require.Len(t, awarded, 3)

	owned, err := ledger.OwnedMedalIDs(userID)
	require.NoError(t, err)
	require.True(t, owned["bronze"])
	require.True(t, owned["silver"])
	require.True(t, owned["gold"])
	require.False(t, owned["platinum"])
}

func TestEvaluateIsIdempotent(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	medals := NewMedalService(db, ledger, testBus(t))
	userID := createTestUser(t, db, ledger)

	setPoints(t, db, ledger, 1200)

	awarded, err := medals.Evaluate(userID)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	require.Equal(t, "bronze", awarded[0].MedalID)

	// Re-running against an unchanged ledger awards nothing.
	awarded, err = medals.Evaluate(userID)
	require.NoError(t, err)
	require.Empty(t, awarded)
}

func TestEvaluateBoundaryIsInclusive(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	medals := NewMedalService(db, ledger, testBus(t))
	userID := createTestUser(t, db, ledger)

	setPoints(t, db, ledger, 999)
	awarded, err := medals.Evaluate(userID)
	require.NoError(t, err)
	require.Empty(t, awarded)

	setPoints(t, db, ledger, 1000)
	awarded, err = medals.Evaluate(userID)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	require.Equal(t, "bronze", awarded[0].MedalID)
}

func TestHighestTracksLadder(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	medals := NewMedalService(db, ledger, testBus(t))
	userID := createTestUser(t, db, ledger)

	highest, err := medals.Highest(userID)
	require.NoError(t, err)
	require.NotNil(t, highest)
	require.Equal(t, "iron", highest.MedalID)

	setPoints(t, db, ledger, 2000)
	_, err = medals.Evaluate(userID)
	require.NoError(t, err)

	highest, err = medals.Highest(userID)
	require.NoError(t, err)
	require.Equal(t, "silver", highest.MedalID)
}

func TestUpsertMedalExtendsLadder(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	medals := NewMedalService(db, ledger, testBus(t))
	userID := createTestUser(t, db, ledger)

	_, err := medals.Upsert(&dto.UpsertMedalRequest{
		MedalID:   "obsidian",
		Name:      "Obsidian",
		Emoji:     "🖤",
		MinPoints: 6000,
	})
	require.NoError(t, err)

	setPoints(t, db, ledger, 6000)
	awarded, err := medals.Evaluate(userID)
	require.NoError(t, err)

	ids := make(map[string]bool, len(awarded))
	for _, m := range awarded {
		ids[m.MedalID] = true
	}
	require.True(t, ids["obsidian"])
}
