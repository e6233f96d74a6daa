package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/telbinapp/telbin-backend/internal/config"
	"github.com/telbinapp/telbin-backend/internal/database"
	"github.com/telbinapp/telbin-backend/internal/dto"
	"github.com/telbinapp/telbin-backend/internal/events"
	"github.com/telbinapp/telbin-backend/internal/handlers"
	"github.com/telbinapp/telbin-backend/internal/routes"
	"github.com/telbinapp/telbin-backend/internal/services"
	"github.com/telbinapp/telbin-backend/internal/vision"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixedVision accepts everything as plastic with one detected object.
type fixedVision struct{}

func (fixedVision) Classify(ctx context.Context, image []byte) (*vision.Prediction, error) {
	return &vision.Prediction{Class: "plastic", Confidence: 0.9}, nil
}

func (fixedVision) Detect(ctx context.Context, image []byte) (int, error) {
	return 1, nil
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedCatalogs(db))
	database.DB = db

	cfg := &config.Config{
		JWTSecret:           "test-secret",
		JWTAccessExpiry:     15 * time.Minute,
		JWTRefreshExpiry:    720 * time.Hour,
		PointsPerSubmission: 10,
		MinConfidence:       0.10,
		AdminToken:          "admin-token",
	}

	bus := events.NewBus(64)
	bus.Subscribe(events.NewNotificationWriter(db))
	t.Cleanup(bus.Close)

	ledgerService := services.NewLedgerService(db)
	medalService := services.NewMedalService(db, ledgerService, bus)
	rewardService := services.NewRewardService(db, ledgerService, medalService, bus)
	feedService := services.NewFeedService(db)
	scanService := services.NewScanService(cfg, fixedVision{}, ledgerService, medalService, feedService, bus)
	moderationService := services.NewModerationService(db)
	authService := services.NewAuthService(db, cfg, ledgerService, moderationService)
	notificationService := services.NewNotificationService(db)

	app := fiber.New()
	routes.Setup(app, cfg, db,
		handlers.NewAuthHandler(authService),
		handlers.NewHealthHandler(),
		handlers.NewScanHandler(scanService, ledgerService),
		handlers.NewLedgerHandler(ledgerService, medalService),
		handlers.NewRewardHandler(rewardService),
		handlers.NewFeedHandler(feedService),
		handlers.NewNotificationHandler(notificationService),
		handlers.NewModerationHandler(moderationService),
		handlers.NewLegalHandler(),
		handlers.NewRemoteConfigHandler(db),
	)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, payload
}

func registerUser(t *testing.T, app *fiber.App, email string) *dto.AuthResponse {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/api/auth/register", "", dto.RegisterRequest{
		Email:    email,
		Password: "secret123",
		FullName: "Handler Test",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var auth dto.AuthResponse
	require.NoError(t, json.Unmarshal(body, &auth))
	return &auth
}

func TestScanFlowEndToEnd(t *testing.T) {
	app := setupApp(t)
	auth := registerUser(t, app, "flow@example.com")

	img := base64.StdEncoding.EncodeToString([]byte("jpeg"))

	// Unauthorized without a token.
	resp, _ := doJSON(t, app, "POST", "/api/scans", "", dto.SubmitRequest{ImageData: img})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/api/scans", auth.AccessToken, dto.SubmitRequest{
		ImageData:      img,
		ProofImageData: img,
		Location:       "Main Quad",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var submit dto.SubmitResponse
	require.NoError(t, json.Unmarshal(body, &submit))
	require.True(t, submit.Accepted)
	require.Equal(t, "plastic", submit.TrashClass)
	require.Equal(t, 10, submit.TotalPoints)

	resp, body = doJSON(t, app, "GET", "/api/ledger", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ledger dto.LedgerResponse
	require.NoError(t, json.Unmarshal(body, &ledger))
	require.Equal(t, 10, ledger.TotalPoints)
	require.EqualValues(t, 1, ledger.TotalScans)
	require.Equal(t, "plastic", ledger.MostScanned)
	require.NotNil(t, ledger.HighestMedal)
	require.Equal(t, "iron", ledger.HighestMedal.MedalID)

	resp, body = doJSON(t, app, "GET", "/api/scans/history", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history dto.HistoryResponse
	require.NoError(t, json.Unmarshal(body, &history))
	require.EqualValues(t, 1, history.Total)
}

func TestMissingLocationBlocksSubmission(t *testing.T) {
	app := setupApp(t)
	auth := registerUser(t, app, "blocked@example.com")

	img := base64.StdEncoding.EncodeToString([]byte("jpeg"))
	resp, body := doJSON(t, app, "POST", "/api/scans", auth.AccessToken, dto.SubmitRequest{
		ImageData:      img,
		ProofImageData: img,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var submit dto.SubmitResponse
	require.NoError(t, json.Unmarshal(body, &submit))
	require.False(t, submit.Accepted)
	require.True(t, submit.Checks.Classification)
	require.False(t, submit.Checks.Location)
}

func TestClaimRewardPathStatuses(t *testing.T) {
	app := setupApp(t)
	auth := registerUser(t, app, "claims@example.com")

	// Not eligible yet.
	resp, _ := doJSON(t, app, "POST", "/api/rewards/eco-sticker-pack/claim", auth.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	img := base64.StdEncoding.EncodeToString([]byte("jpeg"))
	for i := 0; i < 5; i++ {
		resp, _ = doJSON(t, app, "POST", "/api/scans", auth.AccessToken, dto.SubmitRequest{
			ImageData:      img,
			ProofImageData: img,
			Location:       "Dorm B",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := doJSON(t, app, "POST", "/api/rewards/eco-sticker-pack/claim", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var claim dto.ClaimRewardResponse
	require.NoError(t, json.Unmarshal(body, &claim))
	require.Equal(t, 100, claim.TotalPoints)

	resp, _ = doJSON(t, app, "POST", "/api/rewards/eco-sticker-pack/claim", auth.AccessToken, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/rewards/nope/claim", auth.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminConfigRequiresPrivilege(t *testing.T) {
	app := setupApp(t)
	auth := registerUser(t, app, "admin-check@example.com")

	resp, _ := doJSON(t, app, "PUT", "/api/admin/config/min_app_version", auth.AccessToken,
		map[string]string{"value": "2.0.0"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err := http.NewRequest("PUT", "/api/admin/config/min_app_version",
		bytes.NewReader([]byte(`{"value":"2.0.0"}`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+auth.AccessToken)
	req.Header.Set("X-Admin-Token", "admin-token")
	adminResp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer adminResp.Body.Close()
	require.Equal(t, http.StatusOK, adminResp.StatusCode)

	resp, body := doJSON(t, app, "GET", "/api/config", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var conf map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &conf))
	require.Equal(t, "2.0.0", conf["min_app_version"])
}
