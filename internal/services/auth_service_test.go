package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/telbinapp/telbin-backend/internal/config"
	"github.com/telbinapp/telbin-backend/internal/dto"
	"github.com/telbinapp/telbin-backend/internal/models"
	"gorm.io/gorm"
)

func newAuthFixture(t *testing.T) (*AuthService, *LedgerService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 720 * time.Hour,
	}
	ledger := NewLedgerService(db)
	return NewAuthService(db, cfg, ledger, NewModerationService(db)), ledger, db
}

func TestRegisterCreatesLedgerAndStarterMedal(t *testing.T) {
	auth, ledger, _ := newAuthFixture(t)

	resp, err := auth.Register(&dto.RegisterRequest{
		Email:    "eco@example.com",
		Password: "secret123",
		FullName: "Eco Warrior",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "eco@example.com", resp.User.Email)

	l, err := ledger.Get(resp.User.ID)
	require.NoError(t, err)
	require.Zero(t, l.TotalPoints)

	owned, err := ledger.OwnedMedalIDs(resp.User.ID)
	require.NoError(t, err)
	require.True(t, owned["iron"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	req := &dto.RegisterRequest{Email: "dup@example.com", Password: "secret123"}
	_, err := auth.Register(req)
	require.NoError(t, err)

	_, err = auth.Register(req)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCleanupExpiredTokens(t *testing.T) {
	auth, _, db := newAuthFixture(t)

	resp, err := auth.Register(&dto.RegisterRequest{
		Email:    "tokens@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	expired := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    resp.User.ID,
		TokenHash: "expired-hash",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	revoked := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    resp.User.ID,
		TokenHash: "revoked-hash",
		ExpiresAt: time.Now().Add(time.Hour),
		Revoked:   true,
	}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&revoked).Error)

	deleted, err := auth.CleanupExpiredTokens()
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	// The live token survives and still rotates.
	var remaining int64
	db.Model(&models.RefreshToken{}).Count(&remaining)
	require.EqualValues(t, 1, remaining)

	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
}

func TestRegisterRejectsFilteredDisplayName(t *testing.T) {
	auth, _, db := newAuthFixture(t)

	// The name becomes the public feed display name, so it goes
	// through the content filter before anything is persisted.
	_, err := auth.Register(&dto.RegisterRequest{
		Email:    "filtered@example.com",
		Password: "secret123",
		FullName: "fucking spammer https://spam.example.com",
	})
	require.Error(t, err)

	var count int64
	db.Model(&models.User{}).Where("email = ?", "filtered@example.com").Count(&count)
	require.Zero(t, count)
}

func TestUpdateProfileRejectsFilteredName(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	resp, err := auth.Register(&dto.RegisterRequest{
		Email:    "clean@example.com",
		Password: "secret123",
		FullName: "Clean Name",
	})
	require.NoError(t, err)

	bad := "visit www.spam.example.com now"
	_, err = auth.UpdateProfile(resp.User.ID, &dto.UpdateProfileRequest{FullName: &bad})
	require.Error(t, err)

	user, err := auth.GetUser(resp.User.ID)
	require.NoError(t, err)
	require.Equal(t, "Clean Name", user.FullName)
}

func TestLogin(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.Register(&dto.RegisterRequest{Email: "a@example.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err := auth.Login(&dto.LoginRequest{Email: "a@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	_, err = auth.Login(&dto.LoginRequest{Email: "a@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(&dto.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	reg, err := auth.Register(&dto.RegisterRequest{Email: "r@example.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := auth.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)

	// The old token was revoked by the rotation.
	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	reg, err := auth.Register(&dto.RegisterRequest{Email: "l@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(&dto.LogoutRequest{RefreshToken: reg.RefreshToken}))

	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestDeleteAccountRemovesProgression(t *testing.T) {
	auth, ledger, db := newAuthFixture(t)

	reg, err := auth.Register(&dto.RegisterRequest{Email: "d@example.com", Password: "secret123"})
	require.NoError(t, err)
	userID := reg.User.ID
	addSubmissions(t, ledger, userID, 2, 10)

	require.ErrorIs(t, auth.DeleteAccount(userID, "wrong"), ErrInvalidCredentials)

	require.NoError(t, auth.DeleteAccount(userID, "secret123"))

	_, err = ledger.Get(userID)
	require.ErrorIs(t, err, ErrLedgerNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Where("user_id = ?", userID).Count(&count).Error)
	require.Zero(t, count)
}

func TestUpdateProfile(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	reg, err := auth.Register(&dto.RegisterRequest{Email: "p@example.com", Password: "secret123"})
	require.NoError(t, err)

	name := "Jordan Green"
	studentID := "650123456"
	user, err := auth.UpdateProfile(reg.User.ID, &dto.UpdateProfileRequest{
		FullName:  &name,
		StudentID: &studentID,
	})
	require.NoError(t, err)
	require.Equal(t, "Jordan Green", user.FullName)
	require.Equal(t, "650123456", user.StudentID)

	empty := "  "
	_, err = auth.UpdateProfile(reg.User.ID, &dto.UpdateProfileRequest{FullName: &empty})
	require.Error(t, err)
}
