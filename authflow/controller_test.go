package authflow_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/ga-dashboard/authflow"
	"github.com/jrsteele09/ga-dashboard/credentials"
	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/jrsteele09/ga-dashboard/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testClientID     = "test-client"
	testClientSecret = "test-secret"
	testRedirectURI  = "http://localhost:5000/auth/google/callback"
	validCode        = "valid-code"
	testEmail        = "jane@example.com"
)

type testFixture struct {
	repo       *sessions.InMemoryRepo
	controller *authflow.Controller
	exchanges  *atomic.Int32
	idToken    string
}

type fixtureOptions struct {
	verifier *oidc.IDTokenVerifier
	idToken  string
}

func setupTestFixture(t *testing.T, opts fixtureOptions) *testFixture {
	t.Helper()

	f := &testFixture{exchanges: &atomic.Int32{}, idToken: opts.idToken}
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.exchanges.Add(1)
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != validCode {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Bad Request"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		body := `{"access_token":"at-1","token_type":"Bearer","refresh_token":"rt-1","expires_in":3599`
		if f.idToken != "" {
			body += `,"id_token":"` + f.idToken + `"`
		}
		_, _ = w.Write([]byte(body + `}`))
	}))
	t.Cleanup(tokenServer.Close)

	f.repo = sessions.NewInMemoryRepo()
	cfg := authflow.NewOAuth2Config(testClientID, testClientSecret, testRedirectURI, opts.verifier != nil, oauth2.Endpoint{
		AuthURL:   "https://accounts.example.com/o/oauth2/auth",
		TokenURL:  tokenServer.URL,
		AuthStyle: oauth2.AuthStyleInParams,
	})
	f.controller = authflow.New(cfg, f.repo, credentials.NewStore(f.repo, cfg), authflow.Options{Verifier: opts.verifier})
	return f
}

func (f *testFixture) newSession(t *testing.T) *sessions.Session {
	t.Helper()
	s := sessions.New(sessions.NewID(), time.Now(), time.Hour)
	require.NoError(t, f.repo.Upsert(context.Background(), s))
	return s
}

func (f *testFixture) stored(t *testing.T, id string) *sessions.Session {
	t.Helper()
	s, err := f.repo.Get(context.Background(), id)
	require.NoError(t, err)
	return s
}

func TestScopes(t *testing.T) {
	require.Equal(t, []string{"https://www.googleapis.com/auth/analytics.readonly"}, authflow.Scopes(false))
	require.Equal(t, []string{"https://www.googleapis.com/auth/analytics.readonly", "openid", "email"}, authflow.Scopes(true))
}

func TestNewOAuth2Config_DefaultsToGoogle(t *testing.T) {
	cfg := authflow.NewOAuth2Config("id", "secret", testRedirectURI, false, oauth2.Endpoint{})
	require.Equal(t, "https://accounts.google.com/o/oauth2/auth", cfg.Endpoint.AuthURL)
}

func TestController_Begin(t *testing.T) {
	f := setupTestFixture(t, fixtureOptions{})
	s := f.newSession(t)

	authURL, err := f.controller.Begin(context.Background(), s)
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "https://www.googleapis.com/auth/analytics.readonly", q.Get("scope"))
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	require.Equal(t, "code", q.Get("response_type"))
	require.NotEmpty(t, q.Get("state"))

	stored := f.stored(t, s.ID)
	require.Equal(t, sessions.StateAwaitingCallback, stored.State)
	require.Equal(t, q.Get("state"), stored.PendingState)
	require.Zero(t, f.exchanges.Load())
}

func TestController_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("valid code authenticates the session", func(t *testing.T) {
		f := setupTestFixture(t, fixtureOptions{})
		s := f.newSession(t)
		_, err := f.controller.Begin(ctx, s)
		require.NoError(t, err)

		err = f.controller.Complete(ctx, s, authflow.CallbackParams{Code: validCode, State: s.PendingState})
		require.NoError(t, err)
		require.Equal(t, int32(1), f.exchanges.Load())
		require.Equal(t, sessions.StateAuthenticated, s.State)

		stored := f.stored(t, s.ID)
		require.Equal(t, sessions.StateAuthenticated, stored.State)
		require.Empty(t, stored.PendingState)
		require.True(t, stored.HasCredentials())
		require.Equal(t, "at-1", stored.Credentials.AccessToken)
		require.Equal(t, "rt-1", stored.Credentials.RefreshToken)
		require.WithinDuration(t, time.Now().Add(time.Hour), stored.Credentials.Expiry, time.Minute)
	})

	failures := []struct {
		name          string
		params        func(s *sessions.Session) authflow.CallbackParams
		wantExchanges int32
		wantErr       error
	}{
		{
			name:          "invalid code",
			params:        func(s *sessions.Session) authflow.CallbackParams { return authflow.CallbackParams{Code: "bad", State: s.PendingState} },
			wantExchanges: 1,
		},
		{
			name:    "state mismatch",
			params:  func(*sessions.Session) authflow.CallbackParams { return authflow.CallbackParams{Code: validCode, State: "forged"} },
			wantErr: apperrors.ErrStateMismatch,
		},
		{
			name:   "missing code",
			params: func(s *sessions.Session) authflow.CallbackParams { return authflow.CallbackParams{State: s.PendingState} },
		},
		{
			name: "provider error",
			params: func(s *sessions.Session) authflow.CallbackParams {
				return authflow.CallbackParams{State: s.PendingState, Error: "access_denied", ErrorDescription: "user said no"}
			},
		},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t, fixtureOptions{})
			s := f.newSession(t)
			_, err := f.controller.Begin(ctx, s)
			require.NoError(t, err)

			err = f.controller.Complete(ctx, s, tc.params(s))
			require.ErrorIs(t, err, apperrors.ErrAuthExchange)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
			require.Equal(t, tc.wantExchanges, f.exchanges.Load())

			stored := f.stored(t, s.ID)
			require.Equal(t, sessions.StateAnonymous, stored.State)
			require.Empty(t, stored.PendingState)
			require.False(t, stored.HasCredentials())
		})
	}

	t.Run("callback without a prior login", func(t *testing.T) {
		f := setupTestFixture(t, fixtureOptions{})
		s := f.newSession(t)

		err := f.controller.Complete(ctx, s, authflow.CallbackParams{Code: validCode, State: ""})
		require.ErrorIs(t, err, apperrors.ErrStateMismatch)
		require.Zero(t, f.exchanges.Load())
	})
}

func TestController_Logout(t *testing.T) {
	f := setupTestFixture(t, fixtureOptions{})
	s := f.newSession(t)

	require.NoError(t, f.controller.Logout(context.Background(), s.ID))
	_, err := f.repo.Get(context.Background(), s.ID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, f.controller.Logout(context.Background(), ""))
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, audience string) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   authflow.GoogleIssuer,
		"aud":   audience,
		"sub":   "10769150350006150715113082367",
		"email": testEmail,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestController_CompleteWithIdentity(t *testing.T) {
	ctx := context.Background()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	verifier := oidc.NewVerifier(authflow.GoogleIssuer,
		&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}},
		&oidc.Config{ClientID: testClientID})

	t.Run("verified email recorded", func(t *testing.T) {
		f := setupTestFixture(t, fixtureOptions{verifier: verifier, idToken: signIDToken(t, key, testClientID)})
		s := f.newSession(t)
		authURL, err := f.controller.Begin(ctx, s)
		require.NoError(t, err)
		require.Contains(t, authURL, "openid")

		require.NoError(t, f.controller.Complete(ctx, s, authflow.CallbackParams{Code: validCode, State: s.PendingState}))

		stored := f.stored(t, s.ID)
		require.Equal(t, testEmail, stored.Email)
		require.Equal(t, sessions.StateAuthenticated, stored.State)
	})

	t.Run("wrong audience rejected", func(t *testing.T) {
		f := setupTestFixture(t, fixtureOptions{verifier: verifier, idToken: signIDToken(t, key, "someone-else")})
		s := f.newSession(t)
		_, err := f.controller.Begin(ctx, s)
		require.NoError(t, err)

		err = f.controller.Complete(ctx, s, authflow.CallbackParams{Code: validCode, State: s.PendingState})
		require.ErrorIs(t, err, apperrors.ErrIdentity)
		require.False(t, f.stored(t, s.ID).HasCredentials())
	})

	t.Run("missing id token rejected", func(t *testing.T) {
		f := setupTestFixture(t, fixtureOptions{verifier: verifier})
		s := f.newSession(t)
		_, err := f.controller.Begin(ctx, s)
		require.NoError(t, err)

		err = f.controller.Complete(ctx, s, authflow.CallbackParams{Code: validCode, State: s.PendingState})
		require.ErrorIs(t, err, apperrors.ErrAuthExchange)
		require.ErrorIs(t, err, apperrors.ErrIdentity)
	})
}
