package sessions_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/jrsteele09/ga-dashboard/sessions"
	"github.com/stretchr/testify/require"
)

func fixedNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := sessions.NowTimeFunc
	sessions.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { sessions.NowTimeFunc = prev })
}

func TestInMemoryRepo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	fixedNow(t, now)

	t.Run("upsert and get return copies", func(t *testing.T) {
		repo := sessions.NewInMemoryRepo()
		s := sessions.New("sid-1", now, time.Hour)
		s.Credentials = &sessions.CredentialSet{AccessToken: "at"}
		require.NoError(t, repo.Upsert(ctx, s))

		s.Credentials.AccessToken = "mutated"

		got, err := repo.Get(ctx, "sid-1")
		require.NoError(t, err)
		require.Equal(t, "at", got.Credentials.AccessToken)

		got.State = sessions.StateAuthenticated
		again, err := repo.Get(ctx, "sid-1")
		require.NoError(t, err)
		require.Equal(t, sessions.StateAnonymous, again.State)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := sessions.NewInMemoryRepo()
		_, err := repo.Get(ctx, "missing")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		repo := sessions.NewInMemoryRepo()
		require.Error(t, repo.Upsert(ctx, &sessions.Session{}))
		_, err := repo.Get(ctx, "")
		require.Error(t, err)
		require.Error(t, repo.Delete(ctx, ""))
	})

	t.Run("expired session is dropped on read", func(t *testing.T) {
		repo := sessions.NewInMemoryRepo()
		require.NoError(t, repo.Upsert(ctx, sessions.New("old", now.Add(-2*time.Hour), time.Hour)))

		_, err := repo.Get(ctx, "old")
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
		require.Equal(t, 0, repo.Len())
	})

	t.Run("expiry delete keeps a session upserted since the read", func(t *testing.T) {
		repo := sessions.NewInMemoryRepo()
		require.NoError(t, repo.Upsert(ctx, sessions.New("sid", now.Add(-2*time.Hour), time.Hour)))
		// A concurrent login replaces the entry after Get saw it expired.
		require.NoError(t, repo.Upsert(ctx, sessions.New("sid", now, time.Hour)))

		current := sessions.DropIfExpired(repo, "sid", now)
		require.NotNil(t, current)
		require.False(t, current.IsExpired(now))
		require.Equal(t, 1, repo.Len())

		got, err := repo.Get(ctx, "sid")
		require.NoError(t, err)
		require.Equal(t, "sid", got.ID)
	})

	t.Run("expiry delete drops a still expired session", func(t *testing.T) {
		repo := sessions.NewInMemoryRepo()
		require.NoError(t, repo.Upsert(ctx, sessions.New("sid", now.Add(-2*time.Hour), time.Hour)))

		require.Nil(t, sessions.DropIfExpired(repo, "sid", now))
		require.Equal(t, 0, repo.Len())
	})

	t.Run("delete", func(t *testing.T) {
		repo := sessions.NewInMemoryRepo()
		require.NoError(t, repo.Upsert(ctx, sessions.New("sid", now, time.Hour)))
		require.NoError(t, repo.Delete(ctx, "sid"))
		require.NoError(t, repo.Delete(ctx, "sid"))

		_, err := repo.Get(ctx, "sid")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("cleanup removes only expired", func(t *testing.T) {
		repo := sessions.NewInMemoryRepo()
		require.NoError(t, repo.Upsert(ctx, sessions.New("live", now, time.Hour)))
		require.NoError(t, repo.Upsert(ctx, sessions.New("dead-1", now.Add(-3*time.Hour), time.Hour)))
		require.NoError(t, repo.Upsert(ctx, sessions.New("dead-2", now.Add(-time.Hour), time.Hour)))

		require.Equal(t, 2, repo.Cleanup())
		require.Equal(t, 1, repo.Len())
	})
}

func TestSession_ResetToAnonymous(t *testing.T) {
	s := sessions.New("sid", time.Now(), time.Hour)
	s.State = sessions.StateAuthenticated
	s.PendingState = "abc"
	s.Email = "a@example.com"
	s.Credentials = &sessions.CredentialSet{AccessToken: "at"}

	s.ResetToAnonymous()

	require.Equal(t, sessions.StateAnonymous, s.State)
	require.Empty(t, s.PendingState)
	require.Empty(t, s.Email)
	require.False(t, s.HasCredentials())
}

func TestCredentialSet_TokenRoundTrip(t *testing.T) {
	expiry := time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)
	set := sessions.CredentialSet{AccessToken: "at", TokenType: "Bearer", RefreshToken: "rt", Expiry: expiry}

	require.Equal(t, set, sessions.CredentialsFromToken(set.Token()))
}
