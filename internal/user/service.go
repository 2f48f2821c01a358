package user

import (
	"context"
	"errors"
	"strings"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/auth"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session is a signed-in member and the tokens issued for them. RefreshToken
// is empty when only the access token was renewed.
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	GetByID(ctx context.Context, userID string) (*User, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

type service struct {
	repo   Repository
	tokens *auth.Tokens
}

func NewService(repo Repository, tokens *auth.Tokens) Service {
	return &service{
		repo:   repo,
		tokens: tokens,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register always creates a plain member; admins are promoted out of band.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, strings.TrimSpace(req.Name), email, passwordHash, auth.RoleMember)
	if err != nil {
		return nil, err
	}
	return s.open(u)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.open(u)
}

func (s *service) open(u *User) (*Session, error) {
	pair, err := s.tokens.Issue(member(u))
	if err != nil {
		return nil, err
	}
	return &Session{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *service) GetByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// Refresh renews the access token from the stored account, so a role change
// takes effect without waiting for the refresh token to expire.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrUserNotFound
	}

	access, err := s.tokens.Access(member(u))
	if err != nil {
		return nil, err
	}
	return &Session{User: u, AccessToken: access}, nil
}

func member(u *User) auth.Member {
	return auth.Member{UserID: u.ID, Email: u.Email, Role: u.Role}
}
