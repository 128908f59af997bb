package config

import "time"

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type SecurityConfig interface {
	GetSessionSecret() []byte
	GetMaxSessionAge() time.Duration
	GetSessionStore() string
	GetRedisURL() string
}

type Security struct {
	SessionSecret string        `env:"SESSION_SECRET" validate:"required,min=16"`
	MaxSessionAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
	SessionStore  string        `env:"SESSION_STORE" envDefault:"memory" validate:"oneof=memory redis"`
	RedisURL      string        `env:"REDIS_URL" validate:"required_if=SessionStore redis"`
}

var _ SecurityConfig = Security{}

func (s Security) GetSessionSecret() []byte {
	return []byte(s.SessionSecret)
}

func (s Security) GetMaxSessionAge() time.Duration {
	if s.MaxSessionAge <= 0 {
		return 24 * time.Hour
	}
	return s.MaxSessionAge
}

func (s Security) GetSessionStore() string {
	if s.SessionStore == "" {
		return SessionStoreMemory
	}
	return s.SessionStore
}

func (s Security) GetRedisURL() string {
	return s.RedisURL
}
