package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Vision services (Roboflow hosted models)
	RoboflowAPIKey string
	ClassifyURL    string
	ClassifyModel  string
	DetectURL      string
	DetectModel    string
	MinConfidence  float64
	VisionTimeout  time.Duration

	// Progression
	PointsPerSubmission int

	// Google Sign-In
	GoogleClientID string

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "telbin_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		RoboflowAPIKey: getEnv("ROBOFLOW_API_KEY", ""),
		ClassifyURL:    getEnv("CLASSIFY_URL", "https://classify.roboflow.com"),
		ClassifyModel:  getEnv("CLASSIFY_MODEL", "classification-waste/11"),
		DetectURL:      getEnv("DETECT_URL", "https://detect.roboflow.com"),
		DetectModel:    getEnv("DETECT_MODEL", "trash-bin-detection/2"),
		MinConfidence:  parseFloat(getEnv("MIN_CONFIDENCE", "0.10"), 0.10),
		VisionTimeout:  parseDuration(getEnv("VISION_TIMEOUT", "30s")),

		PointsPerSubmission: parseInt(getEnv("POINTS_PER_SUBMISSION", "10"), 10),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
