package sessions

import (
	"time"

	"golang.org/x/oauth2"
)

// State is the explicit login state of a browser session.
type State string

const (
	StateAnonymous        State = "anonymous"
	StateAwaitingCallback State = "awaiting_callback"
	StateAuthenticated    State = "authenticated"
)

// CredentialSet is the token set returned by the identity provider for one session.
type CredentialSet struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// CredentialsFromToken copies the fields of an oauth2 token into a CredentialSet.
func CredentialsFromToken(tok *oauth2.Token) CredentialSet {
	return CredentialSet{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

// Token returns a fresh oauth2 token built from the set.
func (c CredentialSet) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    c.TokenType,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// Session identifies one browser client and holds at most one CredentialSet.
type Session struct {
	ID    string `json:"id"`
	State State  `json:"state"`

	// PendingState is the OAuth state value issued by the last login redirect.
	PendingState string `json:"pending_state,omitempty"`

	Credentials *CredentialSet `json:"credentials,omitempty"`

	// Email is only set when ID token verification is enabled.
	Email string `json:"email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New returns an anonymous session living for ttl.
func New(id string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		State:     StateAnonymous,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// HasCredentials is the only check the authentication gate performs.
func (s *Session) HasCredentials() bool {
	return s != nil && s.Credentials != nil
}

// Clone returns a deep copy so repos never share memory with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Credentials != nil {
		creds := *s.Credentials
		c.Credentials = &creds
	}
	return &c
}

// ResetToAnonymous drops any pending login and stored credentials.
func (s *Session) ResetToAnonymous() {
	s.State = StateAnonymous
	s.PendingState = ""
	s.Credentials = nil
	s.Email = ""
}
