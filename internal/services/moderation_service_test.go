package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/telbinapp/telbin-backend/internal/dto"
)

func TestFilterContent(t *testing.T) {
	ms := NewModerationService(nil)

	cases := []struct {
		text   string
		ok     bool
		reason string
	}{
		{"Cleaned up the park today", true, ""},
		{"", true, ""},
		{"this is fucking great", false, "inappropriate_language"},
		{"visit https://spam.example.com now", false, "url_not_allowed"},
		{"email me at someone@example.com", false, "contact_info_not_allowed"},
		{"call 555-123-4567", false, "contact_info_not_allowed"},
		{"soooooo cool", false, "spam_detected"},
	}

	for _, tc := range cases {
		ok, reason := ms.FilterContent(tc.text)
		require.Equal(t, tc.ok, ok, "text: %q", tc.text)
		require.Equal(t, tc.reason, reason, "text: %q", tc.text)
	}
}

func TestCreateAndActionReport(t *testing.T) {
	db := testDB(t)
	ms := NewModerationService(db)
	ledger := NewLedgerService(db)
	reporterID := createTestUser(t, db, ledger)

	_, err := ms.CreateReport(reporterID, &dto.CreateReportRequest{ContentID: "abc", Reason: " "})
	require.Error(t, err)

	report, err := ms.CreateReport(reporterID, &dto.CreateReportRequest{
		ContentID: uuid.NewString(),
		Reason:    "fake cleanup photo",
	})
	require.NoError(t, err)
	require.Equal(t, "pending", report.Status)

	reports, total, err := ms.ListReports("pending", 20, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, reports, 1)

	err = ms.ActionReport(report.ID, &dto.ActionReportRequest{Status: "nonsense"})
	require.Error(t, err)

	err = ms.ActionReport(report.ID, &dto.ActionReportRequest{Status: "dismissed", AdminNote: "photo is genuine"})
	require.NoError(t, err)

	err = ms.ActionReport(uuid.New(), &dto.ActionReportRequest{Status: "dismissed"})
	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestCreateReportRejectsFilteredReason(t *testing.T) {
	db := testDB(t)
	ms := NewModerationService(db)
	ledger := NewLedgerService(db)
	reporterID := createTestUser(t, db, ledger)

	_, err := ms.CreateReport(reporterID, &dto.CreateReportRequest{
		ContentID: uuid.NewString(),
		Reason:    "contact me at someone@example.com",
	})
	require.Error(t, err)

	_, total, err := ms.ListReports("", 20, 0)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestBlockUnblock(t *testing.T) {
	db := testDB(t)
	ms := NewModerationService(db)
	ledger := NewLedgerService(db)
	blocker := createTestUser(t, db, ledger)
	blocked := createTestUser(t, db, ledger)

	require.ErrorIs(t, ms.BlockUser(blocker, blocker), ErrSelfBlock)

	require.NoError(t, ms.BlockUser(blocker, blocked))
	require.ErrorIs(t, ms.BlockUser(blocker, blocked), ErrAlreadyBlocked)

	ids, err := ms.GetBlockedIDs(blocker)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{blocked}, ids)

	require.NoError(t, ms.UnblockUser(blocker, blocked))
	ids, err = ms.GetBlockedIDs(blocker)
	require.NoError(t, err)
	require.Empty(t, ids)
}
