package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	AnalyticsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetFrontendURL() string
	GetDashboardURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
	GetRateLimitRequests() int
	GetRateLimitWindow() time.Duration
}

// Settings is the immutable process configuration. It is populated once at
// startup and handed to constructors by value or through the Config interface.
type Settings struct {
	EnvVars
	Cors
	OAuth
	Security
	Analytics
}

var _ Config = Settings{}

// New loads an optional .env file, parses the environment and validates the result.
func New(envFiles ...string) (Config, error) {
	s, err := Load(envFiles...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Load is New returning the concrete Settings.
func Load(envFiles ...string) (Settings, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, apperrors.Wrapf(apperrors.ErrInvalidConfig, "[config Load] parse environment: %v", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the struct tags of every configuration group.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("[config Validate] %v: %w", err, apperrors.ErrInvalidConfig)
	}
	return nil
}
