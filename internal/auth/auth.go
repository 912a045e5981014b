// Package auth issues and validates session tokens and gates account
// provisioning. Session state is carried explicitly in a Session value
// rather than in process-wide storage.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/repository"
)

const minPasswordLength = 8

// Claims is the JWT payload of a session token.
type Claims struct {
	UserID   int64         `json:"userId"`
	Username string        `json:"username"`
	Roles    []models.Role `json:"roles"`
	jwt.RegisteredClaims
}

// Session is the authenticated caller of an operation, reconstructed
// from a bearer token per request.
type Session struct {
	UserID   int64
	Username string
	Roles    []models.Role
}

// HasRole reports whether the session grants at least the capabilities
// of role.
func (s *Session) HasRole(role models.Role) bool {
	return models.HasRole(s.Roles, role)
}

// SignInResult is returned on successful authentication.
type SignInResult struct {
	Token    string        `json:"token"`
	ID       int64         `json:"id"`
	Username string        `json:"username"`
	Roles    []models.Role `json:"roles"`
}

// SignUpRequest describes a new staff account. Roles default to STAFF
// when empty.
type SignUpRequest struct {
	Username string        `json:"username"`
	Password string        `json:"password"`
	Roles    []models.Role `json:"roles"`
}

// Service authenticates staff and provisions accounts.
type Service struct {
	users    repository.UserStore
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an auth service signing tokens with secret.
func NewService(users repository.UserStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), tokenTTL: tokenTTL}
}

// SignIn verifies credentials and returns a signed session token with
// the user's role set. Unknown user and wrong password are
// indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, username, password string) (*SignInResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &SignInResult{
		Token:    token,
		ID:       user.ID,
		Username: user.Username,
		Roles:    user.Roles,
	}, nil
}

func (s *Service) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    "restaurant-ops",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token and reconstructs the session. Any
// parse or validation failure, expiry included, maps to ErrUnauthorized
// so the caller tears down its cached session and re-authenticates.
func (s *Service) ParseToken(tokenString string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", models.ErrUnauthorized)
	}

	return &Session{
		UserID:   claims.UserID,
		Username: claims.Username,
		Roles:    claims.Roles,
	}, nil
}

// SignUp provisions a new staff account. Only ADMIN sessions may call it.
func (s *Service) SignUp(ctx context.Context, session *Session, req SignUpRequest) (*models.User, error) {
	if session == nil || !session.HasRole(models.RoleAdmin) {
		return nil, fmt.Errorf("%w: only admins may create accounts", models.ErrForbidden)
	}

	if req.Username == "" {
		return nil, fmt.Errorf("%w: username is required", models.ErrInvalidInput)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", models.ErrInvalidInput, minPasswordLength)
	}
	roles := req.Roles
	if len(roles) == 0 {
		roles = []models.Role{models.RoleStaff}
	}
	for _, r := range roles {
		if !r.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, r)
		}
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username already taken", models.ErrInvalidInput)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Roles:        roles,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin seeds the bootstrap admin account if it does not exist.
// With no admin there is no way to provision the first user.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	return s.users.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Roles:        []models.Role{models.RoleAdmin},
	})
}
