package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/telbinapp/telbin-backend/internal/config"
	"github.com/telbinapp/telbin-backend/internal/dto"
	"github.com/telbinapp/telbin-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	db          *gorm.DB
	cfg         *config.Config
	ledger      *LedgerService
	moderation  *ModerationService
	googleCerts *GoogleCertsClient
}

func NewAuthService(db *gorm.DB, cfg *config.Config, ledger *LedgerService, moderation *ModerationService) *AuthService {
	return &AuthService{
		db:          db,
		cfg:         cfg,
		ledger:      ledger,
		moderation:  moderation,
		googleCerts: NewGoogleCertsClient(),
	}
}

// Register creates the account and its zero-state ledger in one
// transaction: an identity never exists without a ledger bound to the
// starter medal.
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if len(req.Email) == 0 || len(req.Password) < 8 {
		return nil, errors.New("email required and password must be at least 8 characters")
	}

	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = strings.Split(req.Email, "@")[0]
	} else if ok, reason := s.moderation.FilterContent(fullName); !ok {
		// The name is reused verbatim as the public feed display name.
		return nil, errors.New(s.moderation.GetRejectionMessage(reason))
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Password:     string(hash),
		FullName:     fullName,
		AuthProvider: "email",
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.ledger.CreateForUser(tx, user.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	s.db.Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

// GoogleSignIn verifies a Google ID token and signs the user in, creating
// the account (and its ledger) on first sight of the identity.
func (s *AuthService) GoogleSignIn(req *dto.GoogleSignInRequest) (*dto.AuthResponse, error) {
	if req.IDToken == "" {
		return nil, errors.New("id_token is required")
	}

	claims, err := s.googleCerts.VerifyToken(req.IDToken, s.cfg.GoogleClientID)
	if err != nil {
		slog.Error("google token verification failed", "error", err)
		return nil, fmt.Errorf("failed to verify Google identity token: %w", err)
	}

	googleUserID := claims.Sub
	email := claims.Email
	if email == "" {
		return nil, errors.New("google token carries no email")
	}

	var user models.User
	err = s.db.Where("google_user_id = ? OR email = ?", googleUserID, email).First(&user).Error

	if err != nil {
		displayName := strings.TrimSpace(req.FullName)
		if displayName == "" {
			displayName = claims.Name
		}
		if displayName == "" {
			displayName = strings.Split(email, "@")[0]
		}

		user = models.User{
			ID:           uuid.New(),
			Email:        email,
			Password:     "",
			FullName:     displayName,
			GoogleUserID: &googleUserID,
			AuthProvider: "google",
		}
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create Google user: %w", err)
			}
			return s.ledger.CreateForUser(tx, user.ID)
		})
		if err != nil {
			return nil, err
		}
	} else {
		if user.GoogleUserID == nil {
			s.db.Model(&user).Updates(map[string]interface{}{
				"google_user_id": googleUserID,
				"auth_provider":  "google",
			})
			user.GoogleUserID = &googleUserID
			user.AuthProvider = "google"
		}
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// UpdateProfile fills in the placeholder identity fields.
func (s *AuthService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.FullName != nil {
		trimmed := strings.TrimSpace(*req.FullName)
		if trimmed == "" {
			return nil, errors.New("full_name cannot be empty")
		}
		if ok, reason := s.moderation.FilterContent(trimmed); !ok {
			return nil, errors.New(s.moderation.GetRejectionMessage(reason))
		}
		updates["full_name"] = trimmed
	}
	if req.StudentID != nil {
		updates["student_id"] = strings.TrimSpace(*req.StudentID)
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*req.PhoneNumber)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if len(updates) == 0 {
		return &user, nil
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}

// DeleteAccount removes the identity and all progression state. Ledger
// deletion is an account-management concern, not a progression-engine
// operation.
func (s *AuthService) DeleteAccount(userID uuid.UUID, password string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}

	if user.AuthProvider != "google" {
		if password == "" {
			return errors.New("password is required")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{})
		tx.Where("user_id = ?", userID).Delete(&models.Submission{})
		tx.Where("user_id = ?", userID).Delete(&models.UserMedal{})
		tx.Where("user_id = ?", userID).Delete(&models.RewardClaim{})
		tx.Where("user_id = ?", userID).Delete(&models.Ledger{})
		tx.Where("user_id = ?", userID).Delete(&models.PublicReport{})
		tx.Where("user_id = ?", userID).Delete(&models.Notification{})
		tx.Where("reporter_id = ?", userID).Delete(&models.Report{})
		tx.Where("blocker_id = ? OR blocked_id = ?", userID, userID).Delete(&models.Block{})
		return tx.Delete(&user).Error
	})
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:           user.ID,
			Email:        user.Email,
			FullName:     user.FullName,
			IsGoogleUser: user.AuthProvider == "google",
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	tokenHash := hashToken(rawToken)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

// CleanupExpiredTokens deletes refresh tokens that are expired or revoked.
func (s *AuthService) CleanupExpiredTokens() (int64, error) {
	result := s.db.Where("expires_at < ? OR revoked = ?", time.Now(), true).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

// StartTokenCleanup runs a daily goroutine purging dead refresh tokens.
func (s *AuthService) StartTokenCleanup(done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := s.CleanupExpiredTokens()
				if err != nil {
					slog.Error("refresh token cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("refresh token cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}
