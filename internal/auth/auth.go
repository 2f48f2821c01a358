package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
)

const (
	jwtIssuer   = "gym-api"
	jwtAudience = "gym-members"

	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrEmptyJWTSecret   = errors.New("jwt secret cannot be empty")
	ErrMissingSubject   = errors.New("token subject cannot be empty")
	ErrUnknownRole      = errors.New("unknown gym role")
)

// TokenKind separates short-lived access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Member is the identity a token is issued for.
type Member struct {
	UserID string
	Email  string
	Role   string
}

// Claims is the JWT payload. The subject is the user id.
type Claims struct {
	Email string    `json:"email"`
	Role  string    `json:"role"`
	Kind  TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() Principal {
	return Principal{UserID: c.Subject, Role: c.Role}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func validRole(role string) bool {
	return role == RoleMember || role == RoleAdmin
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hashedPassword, plainPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword)) == nil
}

// Tokens signs and verifies member session tokens against one HMAC secret.
// Expiry is judged by the injected clock so sessions follow gym time in tests.
type Tokens struct {
	secret []byte
	clock  clock.Clock
}

func NewTokens(secret string, clk clock.Clock) *Tokens {
	return &Tokens{secret: []byte(secret), clock: clk}
}

func (t *Tokens) sign(m Member, kind TokenKind, ttl time.Duration) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrEmptyJWTSecret
	}
	if m.UserID == "" {
		return "", ErrMissingSubject
	}
	if !validRole(m.Role) {
		return "", ErrUnknownRole
	}

	now := t.clock.Now()
	claims := &Claims{
		Email: m.Email,
		Role:  m.Role,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    jwtIssuer,
			Subject:   m.UserID,
			Audience:  jwt.ClaimStrings{jwtAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Access(m Member) (string, error) {
	return t.sign(m, KindAccess, AccessTokenTTL)
}

// Issue returns a fresh access and refresh token for m.
func (t *Tokens) Issue(m Member) (TokenPair, error) {
	access, err := t.sign(m, KindAccess, AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(m, KindRefresh, RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify parses raw and checks signature, issuer, audience, expiry and kind.
func (t *Tokens) Verify(raw string, kind TokenKind) (*Claims, error) {
	if len(t.secret) == 0 {
		return nil, ErrEmptyJWTSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (interface{}, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithAudience(jwtAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, err
	}
	if !token.Valid || claims.Subject == "" || !validRole(claims.Role) {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}
