package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssuer_IssueParse(t *testing.T) {
	t.Parallel()
	iss := NewIssuer(Config{Secret: "secret", TTL: time.Hour})

	token, exp, err := iss.Issue("ann@example.com", "Ann Lee")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", claims.Email)
	require.Equal(t, "Ann Lee", claims.Name)
}

func TestIssuer_ParseRejects(t *testing.T) {
	t.Parallel()
	iss := NewIssuer(Config{Secret: "secret", TTL: time.Hour})
	token, _, err := iss.Issue("ann@example.com", "Ann")
	require.NoError(t, err)

	other := NewIssuer(Config{Secret: "other", TTL: time.Hour})
	_, err = other.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer(Config{Secret: "secret", TTL: time.Hour})
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthContext(t *testing.T) {
	t.Parallel()
	_, ok := UserFromContext(context.Background())
	require.False(t, ok)

	ctx := SetAuthContext(context.Background(), "ann@example.com")
	email, ok := UserFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "ann@example.com", email)
}
