// Package authflow drives the Google authorization-code login for a browser session:
// Anonymous -> AwaitingCallback -> Authenticated.
package authflow

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/ga-dashboard/credentials"
	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/jrsteele09/ga-dashboard/internal/logging"
	"github.com/jrsteele09/ga-dashboard/internal/metrics"
	"github.com/jrsteele09/ga-dashboard/sessions"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/analyticsdata/v1beta"
)

// GoogleIssuer is the issuer of Google ID tokens.
const GoogleIssuer = "https://accounts.google.com"

const stateLength = 32

// Scopes returns the fixed scope list: read-only analytics, plus openid/email
// when the ID token is verified.
func Scopes(identity bool) []string {
	scopes := []string{analyticsdata.AnalyticsReadonlyScope}
	if identity {
		scopes = append(scopes, oidc.ScopeOpenID, "email")
	}
	return scopes
}

// NewOAuth2Config builds the process-wide client configuration. A zero endpoint means Google.
func NewOAuth2Config(clientID, clientSecret, redirectURL string, identity bool, endpoint oauth2.Endpoint) *oauth2.Config {
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURL,
		Scopes:       Scopes(identity),
	}
}

// NewGoogleVerifier discovers Google's signing keys and returns an ID token verifier for clientID.
func NewGoogleVerifier(ctx context.Context, clientID string) (*oidc.IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("[authflow NewGoogleVerifier] failed to create OIDC provider: %w", err)
	}
	return provider.Verifier(&oidc.Config{ClientID: clientID}), nil
}

// Options tweak a Controller.
type Options struct {
	// Verifier, when set, requires and verifies an ID token on every exchange.
	Verifier *oidc.IDTokenVerifier
	// ExchangeTimeout bounds the token endpoint call; zero leaves it unbounded.
	ExchangeTimeout time.Duration
}

// CallbackParams are the query parameters the provider sends to the callback route.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

type Controller struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
	timeout  time.Duration
	sessions sessions.Repo
	creds    *credentials.Store
}

// New copies oauthConfig so the controller's view is immutable.
func New(oauthConfig *oauth2.Config, repo sessions.Repo, creds *credentials.Store, opts Options) *Controller {
	return &Controller{
		oauth:    *oauthConfig,
		verifier: opts.Verifier,
		timeout:  opts.ExchangeTimeout,
		sessions: repo,
		creds:    creds,
	}
}

// Begin moves the session to AwaitingCallback and returns the consent URL to redirect to.
func (c *Controller) Begin(ctx context.Context, session *sessions.Session) (string, error) {
	state, err := generateRandomString(stateLength)
	if err != nil {
		return "", fmt.Errorf("[authflow Begin] state: %w", err)
	}

	session.State = sessions.StateAwaitingCallback
	session.PendingState = state
	if err := c.sessions.Upsert(ctx, session); err != nil {
		return "", fmt.Errorf("[authflow Begin] upsert session: %w", err)
	}

	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// Complete handles the provider callback. Any failure sends the session back
// to Anonymous and returns an error matching ErrAuthExchange.
func (c *Controller) Complete(ctx context.Context, session *sessions.Session, params CallbackParams) error {
	if params.Error != "" {
		return c.fail(ctx, session, fmt.Errorf("provider returned %s: %s", params.Error, params.ErrorDescription))
	}
	if params.Code == "" {
		return c.fail(ctx, session, fmt.Errorf("missing code parameter"))
	}
	if session.State != sessions.StateAwaitingCallback || session.PendingState == "" ||
		subtle.ConstantTimeCompare([]byte(session.PendingState), []byte(params.State)) != 1 {
		return c.fail(ctx, session, apperrors.ErrStateMismatch)
	}

	exchangeCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		exchangeCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	token, err := c.oauth.Exchange(exchangeCtx, params.Code)
	if err != nil {
		return c.fail(ctx, session, fmt.Errorf("token exchange: %w", err))
	}

	if c.verifier != nil {
		email, err := c.verifyIdentity(ctx, token)
		if err != nil {
			return c.fail(ctx, session, err)
		}
		session.Email = email
		if err := c.sessions.Upsert(ctx, session); err != nil {
			return c.fail(ctx, session, fmt.Errorf("upsert session: %w", err))
		}
	}

	set := sessions.CredentialsFromToken(token)
	if err := c.creds.Store(ctx, session.ID, set); err != nil {
		return c.fail(ctx, session, err)
	}
	session.Credentials = &set
	session.State = sessions.StateAuthenticated
	session.PendingState = ""

	metrics.AuthExchanges.WithLabelValues("success").Inc()
	logging.Ctx(ctx).Info().
		Bool("refresh_token", set.RefreshToken != "").
		Time("expiry", set.Expiry).
		Msg("[authflow] session authenticated")
	return nil
}

// Logout forgets the session and everything bound to it.
func (c *Controller) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := c.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("[authflow Logout] %w", err)
	}
	return nil
}

func (c *Controller) verifyIdentity(ctx context.Context, token *oauth2.Token) (string, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", fmt.Errorf("%w: no id_token in response", apperrors.ErrIdentity)
	}
	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrIdentity, err)
	}
	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("%w: claims: %v", apperrors.ErrIdentity, err)
	}
	return claims.Email, nil
}

func (c *Controller) fail(ctx context.Context, session *sessions.Session, cause error) error {
	metrics.AuthExchanges.WithLabelValues("failure").Inc()
	logging.Ctx(ctx).Error().Err(cause).Msg("[authflow] callback failed")

	session.ResetToAnonymous()
	if err := c.sessions.Upsert(ctx, session); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("[authflow] failed to reset session")
	}
	return fmt.Errorf("%w: %w", apperrors.ErrAuthExchange, cause)
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
