package config

type AnalyticsConfig interface {
	GetPropertyID() string
	GetAnalyticsEndpoint() string
	GetExposeUpstreamErrors() bool
	GetDisplayLocale() string
	GetBreakerEnabled() bool
}

type Analytics struct {
	PropertyID           string `env:"GA4_PROPERTY_ID" validate:"required"`
	Endpoint             string `env:"ANALYTICS_ENDPOINT" validate:"omitempty,url"`
	ExposeUpstreamErrors bool   `env:"EXPOSE_UPSTREAM_ERRORS" envDefault:"true"`
	DisplayLocale        string `env:"DISPLAY_LOCALE" envDefault:"en-US"`
	BreakerEnabled       bool   `env:"BREAKER_ENABLED" envDefault:"false"`
}

var _ AnalyticsConfig = Analytics{}

func (a Analytics) GetPropertyID() string {
	return a.PropertyID
}

// GetAnalyticsEndpoint overrides the Analytics Data API base URL; empty keeps the library default.
func (a Analytics) GetAnalyticsEndpoint() string {
	return a.Endpoint
}

func (a Analytics) GetExposeUpstreamErrors() bool {
	return a.ExposeUpstreamErrors
}

func (a Analytics) GetDisplayLocale() string {
	if a.DisplayLocale == "" {
		return "en-US"
	}
	return a.DisplayLocale
}

func (a Analytics) GetBreakerEnabled() bool {
	return a.BreakerEnabled
}
