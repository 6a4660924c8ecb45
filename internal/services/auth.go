package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrPasswordTooLong = fmt.Errorf("password too long (max %d bytes)", maxPasswordBytes)
)

// bcrypt only hashes the first 72 bytes and rejects longer input.
const maxPasswordBytes = 72

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	Token string
	User  core.User
}

// AuthService registers users, checks credentials and issues HS256 bearer tokens.
type AuthService struct {
	users      ports.UserStore
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
	newID      func() string
}

func NewAuthService(users ports.UserStore, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// WithBcryptCost overrides the hashing cost, mainly to keep tests fast.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AuthResult{}, &core.ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if len(password) > maxPasswordBytes {
		return AuthResult{}, &core.ValidationError{Field: "password", Err: ErrPasswordTooLong}
	}
	email = normalizeEmail(email)

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, ports.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	u := core.User{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return AuthResult{}, err
	}
	slog.InfoContext(ctx, "User registered", "user_id", u.ID)
	return AuthResult{Token: token, User: u}, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: u}, nil
}

func (s *AuthService) issueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a bearer token to its user. Expired, forged or
// orphaned tokens all yield ErrInvalidToken.
func (s *AuthService) Authenticate(ctx context.Context, token string) (core.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || claims.Subject == "" {
		return core.User{}, ErrInvalidToken
	}

	u, err := s.users.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return core.User{}, ErrInvalidToken
		}
		return core.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (core.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, notFound(err)
	}
	return u, nil
}

// UpdateProfile renames the user. A nil name leaves the profile unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, name *string) (core.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, notFound(err)
	}
	if name == nil {
		return u, nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return core.User{}, &core.ValidationError{Field: "name", Err: ErrEmptyName}
	}
	u.Name = trimmed
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return core.User{}, notFound(err)
	}
	return u, nil
}
