package config

import (
	"slices"
	"strings"
	"time"
)

type Cors struct {
	Origins           []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100" validate:"gte=0"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

var _ CorsConfig = Cors{}

type AllowedOrigins []string

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	return slices.Contains(a, origin)
}

func (a AllowedOrigins) String() string {
	return strings.Join(a, ", ")
}

func (c Cors) GetAllowedOrigins() AllowedOrigins {
	return AllowedOrigins(c.Origins)
}

func (Cors) GetAllowedMethods() []string {
	return []string{"GET", "OPTIONS"}
}

func (Cors) GetAllowedHeaders() []string {
	return []string{"Content-Type", "Authorization"}
}

// GetRateLimitRequests returns 0 when rate limiting is disabled.
func (c Cors) GetRateLimitRequests() int {
	return c.RateLimitRequests
}

func (c Cors) GetRateLimitWindow() time.Duration {
	if c.RateLimitWindow <= 0 {
		return time.Minute
	}
	return c.RateLimitWindow
}
