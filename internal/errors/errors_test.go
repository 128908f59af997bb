package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, apperrors.Wrapf(nil, "context %d", 1))
	})

	t.Run("keeps chain", func(t *testing.T) {
		err := apperrors.Wrapf(apperrors.ErrSessionNotFound, "[sessions Get] id %s", "abc")
		require.EqualError(t, err, "[sessions Get] id abc: session not found")
		require.True(t, apperrors.Is(err, apperrors.ErrSessionNotFound))
	})
}

type codedErr struct{ code int }

func (c *codedErr) Error() string { return fmt.Sprintf("code %d", c.code) }

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", &codedErr{code: 7})
	var target *codedErr
	require.True(t, apperrors.As(err, &target))
	require.Equal(t, 7, target.code)
}
