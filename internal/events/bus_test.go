package events

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/telbinapp/telbin-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingSubscriber struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSubscriber) Handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSubscriber) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus(16)
	sub := &recordingSubscriber{}
	bus.Subscribe(sub)

	userID := uuid.New()
	for i := 0; i < 5; i++ {
		bus.Publish(Event{Type: TypePointsIncreased, UserID: userID, Message: "points"})
	}
	bus.Close()

	require.Equal(t, 5, sub.count())
	require.Zero(t, bus.Dropped())
}

func TestBusDrainsOnClose(t *testing.T) {
	bus := NewBus(64)
	sub := &recordingSubscriber{}
	bus.Subscribe(sub)

	for i := 0; i < 30; i++ {
		bus.Publish(Event{Type: TypeMedalUnlocked, UserID: uuid.New()})
	}
	bus.Close()

	require.Equal(t, 30, sub.count())
}

func TestBusPublishNeverBlocks(t *testing.T) {
	// A bus with no running room and a slow consumer must drop rather
	// than stall the publisher.
	bus := NewBus(1)
	slow := make(chan struct{})
	bus.Subscribe(subscriberFunc(func(e Event) { <-slow }))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Type: TypeRewardClaimed})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}

	close(slow)
	bus.Close()
	require.Positive(t, bus.Dropped())
}

type subscriberFunc func(e Event)

func (f subscriberFunc) Handle(e Event) { f(e) }

func TestNotificationWriterPersistsEvents(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))

	bus := NewBus(16)
	bus.Subscribe(NewNotificationWriter(db))

	userID := uuid.New()
	bus.Publish(Event{
		Type:    TypeMedalUnlocked,
		UserID:  userID,
		Message: "Medal unlocked: 🥉 Bronze",
		Payload: map[string]interface{}{"medal_id": "bronze", "min_points": 1000},
	})
	bus.Close()

	var rows []models.Notification
	require.NoError(t, db.Where("user_id = ?", userID).Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, TypeMedalUnlocked, rows[0].Type)
	require.Contains(t, rows[0].Message, "Bronze")
	require.False(t, rows[0].Read)
	require.Contains(t, string(rows[0].Payload), "bronze")
}
