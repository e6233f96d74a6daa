package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/telbinapp/telbin-backend/internal/events"
)

func TestNotificationLifecycle(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	ns := NewNotificationService(db)
	userID := createTestUser(t, db, ledger)

	bus := events.NewBus(16)
	bus.Subscribe(events.NewNotificationWriter(db))
	bus.Publish(events.Event{Type: events.TypePointsIncreased, UserID: userID, Message: "You earned 10 points"})
	bus.Publish(events.Event{Type: events.TypeMedalUnlocked, UserID: userID, Message: "Medal unlocked"})
	bus.Close()

	list, err := ns.List(userID, 50)
	require.NoError(t, err)
	require.Len(t, list, 2)

	unread, err := ns.UnreadCount(userID)
	require.NoError(t, err)
	require.EqualValues(t, 2, unread)

	require.NoError(t, ns.MarkRead(userID, list[0].ID))
	unread, err = ns.UnreadCount(userID)
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)

	// Another user cannot mark someone else's notification.
	require.ErrorIs(t, ns.MarkRead(uuid.New(), list[1].ID), ErrNotificationNotFound)

	require.NoError(t, ns.MarkAllRead(userID))
	unread, err = ns.UnreadCount(userID)
	require.NoError(t, err)
	require.Zero(t, unread)
}
