// Package credentials binds OAuth token sets to sessions and turns them into
// per-request authorized HTTP clients.
package credentials

import (
	"context"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/jrsteele09/ga-dashboard/sessions"
	"golang.org/x/oauth2"
)

// AuthorizedClient is an immutable, request-scoped handle on one session's credentials.
type AuthorizedClient struct {
	source oauth2.TokenSource
}

// NewAuthorizedClient wraps an arbitrary token source, e.g. one built from a
// refresh token outside any browser session.
func NewAuthorizedClient(source oauth2.TokenSource) AuthorizedClient {
	return AuthorizedClient{source: source}
}

// HTTPClient returns a client that sets the Authorization header on every call
// and refreshes an expired access token when a refresh token is available.
// Token errors surfacing from its calls match ErrCredentials.
func (c AuthorizedClient) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, taggedSource{c.source})
}

type taggedSource struct {
	src oauth2.TokenSource
}

func (s taggedSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrCredentials, err)
	}
	return tok, nil
}

// TokenSource exposes the underlying source.
func (c AuthorizedClient) TokenSource() oauth2.TokenSource {
	return c.source
}

// Store keeps credential sets on sessions.
type Store struct {
	repo  sessions.Repo
	oauth oauth2.Config
}

// NewStore copies oauthConfig; later changes to the caller's value are not observed.
func NewStore(repo sessions.Repo, oauthConfig *oauth2.Config) *Store {
	return &Store{repo: repo, oauth: *oauthConfig}
}

// Store persists set on the session and marks it authenticated.
func (s *Store) Store(ctx context.Context, sessionID string, set sessions.CredentialSet) error {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return apperrors.Wrapf(err, "[credentials Store] session %s", shortID(sessionID))
	}

	session.Credentials = &set
	session.State = sessions.StateAuthenticated
	session.PendingState = ""

	if err := s.repo.Upsert(ctx, session); err != nil {
		return apperrors.Wrapf(err, "[credentials Store] upsert")
	}
	return nil
}

// Attach returns an AuthorizedClient for the session or ErrUnauthenticated
// when the session is unknown, expired or carries no credentials. Token expiry
// is not checked here.
func (s *Store) Attach(ctx context.Context, sessionID string) (AuthorizedClient, error) {
	if sessionID == "" {
		return AuthorizedClient{}, apperrors.ErrUnauthenticated
	}
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return AuthorizedClient{}, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[credentials Attach] %v", err)
	}
	if !session.HasCredentials() {
		return AuthorizedClient{}, apperrors.ErrUnauthenticated
	}
	return s.Client(*session.Credentials), nil
}

// Client builds an AuthorizedClient straight from a credential set.
func (s *Store) Client(set sessions.CredentialSet) AuthorizedClient {
	// context.Background: the token source outlives the request that created
	// it only as long as the AuthorizedClient value is held.
	return AuthorizedClient{source: s.oauth.TokenSource(context.Background(), set.Token())}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
