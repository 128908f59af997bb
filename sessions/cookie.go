package sessions

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
)

// CookieName is the name of the cookie carrying the signed session id.
const CookieName = "ga_session"

const cookieIssuer = "ga-dashboard"

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// CookieCodec signs and verifies session ids as HS256 JWTs so a browser cannot
// pick or forge another session's id.
type CookieCodec struct {
	secret []byte
	maxAge time.Duration
}

func NewCookieCodec(secret []byte, maxAge time.Duration) *CookieCodec {
	return &CookieCodec{secret: secret, maxAge: maxAge}
}

// Encode signs sessionID with an expiry of now+maxAge.
func (c *CookieCodec) Encode(sessionID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    cookieIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", apperrors.Wrapf(err, "[sessions CookieCodec] sign")
	}
	return signed, nil
}

// Decode verifies value and returns the session id it carries.
func (c *CookieCodec) Decode(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidCookie, "[sessions CookieCodec] %v", err)
	}
	if claims.ID == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidCookie, "[sessions CookieCodec] missing session id")
	}
	return claims.ID, nil
}

// Cookie builds the http cookie for an encoded value.
func (c *CookieCodec) Cookie(value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.maxAge.Seconds()),
	}
}

// ExpiredCookie clears the session cookie in the browser.
func (c *CookieCodec) ExpiredCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
