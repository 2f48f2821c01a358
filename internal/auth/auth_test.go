package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
)

const (
	testSecret = "test-secret-key-12345"
	testUserID = "5f0c1a52-4b1e-4c61-9a57-0c8f3a1c2b11"
)

var testNow = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newTestTokens(at time.Time) *Tokens {
	return NewTokens(testSecret, clock.Fixed{At: at})
}

func testMember() Member {
	return Member{UserID: testUserID, Email: "user@example.com", Role: RoleMember}
}

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("mySecurePassword123")
	require.NoError(t, err)
	assert.NotEqual(t, "mySecurePassword123", hashed)

	other, _ := HashPassword("mySecurePassword123")
	assert.NotEqual(t, hashed, other)

	assert.True(t, CheckPassword(hashed, "mySecurePassword123"))
	assert.False(t, CheckPassword(hashed, "wrong"))
	assert.False(t, CheckPassword(hashed, ""))
}

func TestTokens_IssueAndVerify(t *testing.T) {
	tokens := newTestTokens(testNow)

	pair, err := tokens.Issue(testMember())
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := tokens.Verify(pair.AccessToken, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.Equal(t, jwtIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, testNow.Add(AccessTokenTTL), claims.ExpiresAt.Time.UTC())
	assert.Equal(t, Principal{UserID: testUserID, Role: RoleMember}, claims.Principal())

	refresh, err := tokens.Verify(pair.RefreshToken, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(RefreshTokenTTL), refresh.ExpiresAt.Time.UTC())
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestTokens_IssueErrors(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		member  Member
		wantErr error
	}{
		{"empty secret", "", testMember(), ErrEmptyJWTSecret},
		{"missing subject", testSecret, Member{Email: "user@example.com", Role: RoleMember}, ErrMissingSubject},
		{"unknown role", testSecret, Member{UserID: testUserID, Role: "trainer"}, ErrUnknownRole},
		{"empty role", testSecret, Member{UserID: testUserID}, ErrUnknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokens(tt.secret, clock.Fixed{At: testNow}).Issue(tt.member)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokens_VerifyFailures(t *testing.T) {
	tokens := newTestTokens(testNow)
	pair, err := tokens.Issue(testMember())
	require.NoError(t, err)

	signed := func(claims *Claims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return raw
	}
	registered := func(audience string) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   testUserID,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Minute)),
		}
	}

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokens("other-secret", clock.Fixed{At: testNow}).Verify(pair.AccessToken, KindAccess)
		assert.Error(t, err)
	})

	t.Run("expired by the clock", func(t *testing.T) {
		later := newTestTokens(testNow.Add(AccessTokenTTL + time.Second))
		_, err := later.Verify(pair.AccessToken, KindAccess)
		assert.ErrorIs(t, err, ErrTokenExpired)

		// the refresh token outlives the access token
		_, err = later.Verify(pair.RefreshToken, KindRefresh)
		assert.NoError(t, err)
	})

	t.Run("wrong kind", func(t *testing.T) {
		_, err := tokens.Verify(pair.RefreshToken, KindAccess)
		assert.ErrorIs(t, err, ErrInvalidTokenType)

		_, err = tokens.Verify(pair.AccessToken, KindRefresh)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("wrong audience", func(t *testing.T) {
		raw := signed(&Claims{Role: RoleMember, Kind: KindAccess, RegisteredClaims: registered("someone-else")})
		_, err := tokens.Verify(raw, KindAccess)
		assert.Error(t, err)
	})

	t.Run("role outside the gym", func(t *testing.T) {
		raw := signed(&Claims{Role: "superuser", Kind: KindAccess, RegisteredClaims: registered(jwtAudience)})
		_, err := tokens.Verify(raw, KindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other signing method", func(t *testing.T) {
		claims := &Claims{Role: RoleMember, Kind: KindAccess, RegisteredClaims: registered(jwtAudience)}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = tokens.Verify(raw, KindAccess)
		assert.Error(t, err)
	})

	t.Run("empty secret", func(t *testing.T) {
		_, err := NewTokens("", clock.Fixed{At: testNow}).Verify("x", KindAccess)
		assert.ErrorIs(t, err, ErrEmptyJWTSecret)
	})
}
