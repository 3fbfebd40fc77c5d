package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
)

type fakeFinder struct {
	admins map[string]models.Admin
}

func (f fakeFinder) FindAdminByEmail(_ context.Context, email string) (models.Admin, error) {
	admin, ok := f.admins[NormalizeEmail(email)]
	if !ok {
		return models.Admin{}, ErrInvalidCredentials
	}
	return admin, nil
}

func newFinder(t *testing.T) fakeFinder {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return fakeFinder{admins: map[string]models.Admin{
		"owner@cafe.test": {
			ID:           primitive.NewObjectID(),
			Email:        "owner@cafe.test",
			PasswordHash: string(hash),
			Role:         RoleAdmin,
		},
	}}
}

func TestLoginIssuesAdminToken(t *testing.T) {
	auth := NewAuthenticator(newFinder(t), "test-secret", 15*time.Minute)

	signed, err := auth.Login(context.Background(), " Owner@Cafe.test ", "s3cret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("expected valid token, got err=%v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["role"] != RoleAdmin {
		t.Fatalf("expected admin role, got %v", claims["role"])
	}
	if claims["email"] != "owner@cafe.test" {
		t.Fatalf("unexpected email claim %v", claims["email"])
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	auth := NewAuthenticator(newFinder(t), "test-secret", time.Minute)

	_, err := auth.Login(context.Background(), "owner@cafe.test", "nope")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	auth := NewAuthenticator(newFinder(t), "test-secret", time.Minute)

	_, err := auth.Login(context.Background(), "ghost@cafe.test", "s3cret")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPasswordVerifies(t *testing.T) {
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}
