package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/telbinapp/telbin-backend/internal/database"
	"github.com/telbinapp/telbin-backend/internal/events"
	"github.com/telbinapp/telbin-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a per-test in-memory database to avoid cross-test
// interference, migrates the schema and seeds the default catalogs.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedCatalogs(db))
	return db
}

func testBus(t *testing.T) *events.Bus {
	t.Helper()
	bus := events.NewBus(64)
	t.Cleanup(bus.Close)
	return bus
}

// createTestUser inserts a user with a fresh zero-point ledger.
func createTestUser(t *testing.T, db *gorm.DB, ledger *LedgerService) uuid.UUID {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Password: "hashed",
		FullName: "Test User",
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, ledger.CreateForUser(db, user.ID))
	return user.ID
}

// addSubmissions appends n accepted plastic submissions worth points each.
func addSubmissions(t *testing.T, ledger *LedgerService, userID uuid.UUID, n, points int) {
	t.Helper()
	for i := 0; i < n; i++ {
		sub := &models.Submission{
			ID:            uuid.New(),
			UserID:        userID,
			TrashClass:    models.ClassPlastic,
			Confidence:    0.9,
			Location:      "Building A",
			PointsAwarded: points,
		}
		require.NoError(t, ledger.AppendSubmission(sub))
	}
}
