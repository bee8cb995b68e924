// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Token
	JWTKey   string        `envconfig:"JWT_KEY" required:"true"`
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"1h"`

	// Password
	BcryptCost int `envconfig:"BCRYPT_COST" default:"12"`

	// Geocoding
	GoogleAPIKey    string        `envconfig:"GOOGLE_API_KEY" required:"true"`
	GeocodeEndpoint string        `envconfig:"GEOCODE_ENDPOINT" default:"https://maps.googleapis.com/maps/api/geocode/json"`
	GeocodeTimeout  time.Duration `envconfig:"GEOCODE_TIMEOUT" default:"10s"`

	// Upload
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads/images"`
	UploadMaxBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"500000"`

	// Rate Limit（req/min）
	RateLimitGeneral int `envconfig:"RATE_LIMIT_GENERAL" default:"120"`
	RateLimitAuth    int `envconfig:"RATE_LIMIT_AUTH" default:"10"`

	// Sweep
	SweepGracePeriod time.Duration `envconfig:"SWEEP_GRACE_PERIOD" default:"24h"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Server
	ServerPort string `envconfig:"SERVER_PORT" default:"5000"`

	// CORS
	CORSAllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN" default:"*"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合や値の形式が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	// 空文字で設定された必須変数も未設定として扱う
	required := []struct {
		key   string
		value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"JWT_KEY", cfg.JWTKey},
		{"GOOGLE_API_KEY", cfg.GoogleAPIKey},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("required environment variable %s is empty", r.key)
		}
	}

	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", cfg.UploadMaxBytes)
	}

	return cfg, nil
}

// LoadDotEnv は指定パスの.envファイルを環境変数に読み込む。
// 既に設定済みの環境変数は上書きしない。ファイルが存在しない場合はエラーにしない。
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
