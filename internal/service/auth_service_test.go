package service

import (
	"context"
	"errors"
	"time"

	"testing"

	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	users   map[string]*domain.User
	created []repository.CreateUserParams
}

func (f *fakeUserStore) Create(_ context.Context, p repository.CreateUserParams) (*domain.User, error) {
	f.created = append(f.created, p)
	u := &domain.User{
		ID:           int64(len(f.created)),
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		Role:         p.Role,
		PasswordHash: p.PasswordHash,
		IsActive:     true,
	}
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func storeWithUser(t *testing.T, email, password string, active bool) *fakeUserStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &fakeUserStore{users: map[string]*domain.User{
		email: {
			ID:           42,
			Name:         "Ana",
			Email:        email,
			Role:         domain.RoleUser,
			PasswordHash: string(hash),
			IsActive:     active,
		},
	}}
}

func TestLoginIssuesSevenDayToken(t *testing.T) {
	store := storeWithUser(t, "ana@example.com", "rahasia", true)
	svc := AuthService{JWTSecret: "test-secret", TokenTTL: 7 * 24 * time.Hour, Users: store}

	res, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "rahasia"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	token, err := jwt.Parse(res.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse token: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != "42" {
		t.Errorf("sub = %v, want 42", claims["sub"])
	}
	if claims["role"] != string(domain.RoleUser) {
		t.Errorf("role = %v, want USER", claims["role"])
	}
	if claims["token_type"] != "access" {
		t.Errorf("token_type = %v, want access", claims["token_type"])
	}

	wantExp := time.Now().Add(7 * 24 * time.Hour)
	if diff := res.ExpiresAt.Sub(wantExp); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiresAt = %v, want ~%v", res.ExpiresAt, wantExp)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := storeWithUser(t, "ana@example.com", "rahasia", true)
	svc := AuthService{JWTSecret: "s", TokenTTL: time.Hour, Users: store}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "nope"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := AuthService{JWTSecret: "s", TokenTTL: time.Hour, Users: &fakeUserStore{users: map[string]*domain.User{}}}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "who@example.com", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginInactiveAccountLooksLikeBadCredentials(t *testing.T) {
	store := storeWithUser(t, "ana@example.com", "rahasia", false)
	svc := AuthService{JWTSecret: "s", TokenTTL: time.Hour, Users: store}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "rahasia"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterHashesAndLowercases(t *testing.T) {
	store := &fakeUserStore{users: map[string]*domain.User{}}
	svc := AuthService{JWTSecret: "s", TokenTTL: time.Hour, Users: store}

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Budi",
		Email:    "Budi@Example.COM",
		Password: "rahasia",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role = %s, want USER", user.Role)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d users, want 1", len(store.created))
	}
	p := store.created[0]
	if p.Email != "budi@example.com" {
		t.Errorf("stored email = %q, want lowercase", p.Email)
	}
	if p.PasswordHash == "rahasia" || p.PasswordHash == "" {
		t.Errorf("password stored unhashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("rahasia")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}
