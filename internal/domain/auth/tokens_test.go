package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/solar-dashboard/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokensIssueAndValidate(t *testing.T) {
	tokens := NewTokens(testSecret, "solar-dashboard")
	now := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	signed, err := tokens.Issue("operator", time.Hour)
	require.NoError(t, err)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, "operator", claims.Subject)
	require.Equal(t, "solar-dashboard", claims.Issuer)
	require.True(t, claims.ExpiresAt.Equal(now.Add(time.Hour)))
}

func TestTokensRejectExpired(t *testing.T) {
	tokens := NewTokens(testSecret, "solar-dashboard")
	now := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }
	signed, err := tokens.Issue("operator", time.Minute)
	require.NoError(t, err)

	tokens.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = tokens.Validate(signed)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestTokensRejectWrongSecretAndIssuer(t *testing.T) {
	signed, err := NewTokens(testSecret, "solar-dashboard").Issue("operator", time.Hour)
	require.NoError(t, err)

	_, err = NewTokens("ffffffffffffffffffffffffffffffff", "solar-dashboard").Validate(signed)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = NewTokens(testSecret, "someone-else").Validate(signed)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = NewTokens(testSecret, "").Validate("not-a-token")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestTokensIssueValidation(t *testing.T) {
	tokens := NewTokens(testSecret, "")
	_, err := tokens.Issue("  ", time.Hour)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	_, err = tokens.Issue("operator", 0)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
