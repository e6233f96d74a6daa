package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewardListProgress(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	medals := NewMedalService(db, ledger, testBus(t))
	rewards := NewRewardService(db, ledger, medals, testBus(t))
	userID := createTestUser(t, db, ledger)

	addSubmissions(t, ledger, userID, 3, 10)

	list, err := rewards.List(userID)
	require.NoError(t, err)
	require.Len(t, list, 8)

	byID := make(map[string]int, len(list))
	for i, r := range list {
		byID[r.RewardID] = i
	}

	sticker := list[byID["eco-sticker-pack"]] // requires 5
	require.InDelta(t, 0.6, sticker.Progress, 1e-9)
	require.False(t, sticker.Claimable)
	require.False(t, sticker.Claimed)

	tote := list[byID["reusable-tote-bag"]] // requires 15
	require.InDelta(t, 0.2, tote.Progress, 1e-9)
}

func TestClaimAfterFiveScans(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	medals := NewMedalService(db, ledger, testBus(t))
	rewards := NewRewardService(db, ledger, medals, testBus(t))
	userID := createTestUser(t, db, ledger)

	addSubmissions(t, ledger, userID, 5, 10)

	resp, err := rewards.Claim(userID, "eco-sticker-pack")
	require.NoError(t, err)
	require.Equal(t, 50, resp.BonusPoints)
	require.Equal(t, 100, resp.TotalPoints) // 5*10 + 50

	list, err := rewards.List(userID)
	require.NoError(t, err)
	for _, r := range list {
		if r.RewardID == "eco-sticker-pack" {
			require.True(t, r.Claimed)
			require.InDelta(t, 1.0, r.Progress, 1e-9)
			require.False(t, r.Claimable)
		}
	}
}

func TestClaimTwiceFails(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	medals := NewMedalService(db, ledger, testBus(t))
	rewards := NewRewardService(db, ledger, medals, testBus(t))
	userID := createTestUser(t, db, ledger)

	addSubmissions(t, ledger, userID, 5, 10)

	_, err := rewards.Claim(userID, "eco-sticker-pack")
	require.NoError(t, err)

	_, err = rewards.Claim(userID, "eco-sticker-pack")
	require.ErrorIs(t, err, ErrAlreadyClaimed)

	l, err := ledger.Get(userID)
	require.NoError(t, err)
	require.Equal(t, 100, l.TotalPoints)
}

func TestClaimUnknownReward(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	medals := NewMedalService(db, ledger, testBus(t))
	rewards := NewRewardService(db, ledger, medals, testBus(t))
	userID := createTestUser(t, db, ledger)

	_, err := rewards.Claim(userID, "no-such-reward")
	require.ErrorIs(t, err, ErrRewardNotFound)
}

func TestClaimBonusCanUnlockMedal(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	medals := NewMedalService(db, ledger, testBus(t))
	rewards := NewRewardService(db, ledger, medals, testBus(t))
	userID := createTestUser(t, db, ledger)

	// 50 scans x 10 = 500 points, well below bronze. The premium badge
	// bonus (+500) lands exactly on the 1000-point boundary.
	addSubmissions(t, ledger, userID, 50, 10)

	resp, err := rewards.Claim(userID, "premium-badge")
	require.NoError(t, err)
	require.Equal(t, 1000, resp.TotalPoints)
	require.Len(t, resp.NewMedals, 1)
	require.Equal(t, "bronze", resp.NewMedals[0].MedalID)
}
