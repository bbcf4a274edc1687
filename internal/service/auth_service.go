package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the slice of the user repository auth needs.
type UserStore interface {
	Create(ctx context.Context, p repository.CreateUserParams) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type AuthService struct {
	JWTSecret string
	TokenTTL  time.Duration
	Users     UserStore
	Logger    *slog.Logger
}

type AuthResult struct {
	Token     string
	User      domain.User
	ExpiresAt time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type LoginInput struct {
	Email    string
	Password string
}

// Register creates a standard field-staff account.
func (s AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.Users.Create(ctx, repository.CreateUserParams{
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		Phone:        in.Phone,
		Role:         domain.RoleUser,
		PasswordHash: string(hash),
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("email already used")
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates by email and password. Inactive accounts are
// indistinguishable from bad credentials to the caller.
func (s AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// issueToken signs a fixed-validity bearer token. There is no refresh
// protocol; clients log in again after expiry.
func (s AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	now := time.Now()
	exp := now.Add(s.TokenTTL)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", user.ID),
		"role":       string(user.Role),
		"token_type": "access",
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:     token,
		User:      *user,
		ExpiresAt: exp,
	}, nil
}
