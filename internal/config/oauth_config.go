package config

import "time"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetOIDCIdentity() bool
	GetExchangeTimeout() time.Duration
}

type OAuth struct {
	ClientID        string        `env:"GOOGLE_CLIENT_ID" validate:"required"`
	ClientSecret    string        `env:"GOOGLE_CLIENT_SECRET" validate:"required"`
	RedirectURI     string        `env:"REDIRECT_URI" validate:"required,url"`
	OIDCIdentity    bool          `env:"OIDC_IDENTITY" envDefault:"false"`
	ExchangeTimeout time.Duration `env:"OAUTH_EXCHANGE_TIMEOUT" envDefault:"0s"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string {
	return o.ClientID
}

func (o OAuth) GetClientSecret() string {
	return o.ClientSecret
}

func (o OAuth) GetRedirectURI() string {
	return o.RedirectURI
}

// GetOIDCIdentity adds the openid/email scopes and verifies the returned ID token.
func (o OAuth) GetOIDCIdentity() bool {
	return o.OIDCIdentity
}

// GetExchangeTimeout bounds the token endpoint round trip; zero means no bound.
func (o OAuth) GetExchangeTimeout() time.Duration {
	return o.ExchangeTimeout
}
