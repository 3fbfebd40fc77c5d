// Package accounts authenticates storefront administrators.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
)

const (
	Collection = "admins"
	RoleAdmin  = "admin"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Finder interface {
	FindAdminByEmail(ctx context.Context, email string) (models.Admin, error)
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

func (s *MongoStore) FindAdminByEmail(ctx context.Context, email string) (models.Admin, error) {
	var admin models.Admin
	err := s.coll.FindOne(ctx, bson.M{"email": NormalizeEmail(email), "role": RoleAdmin}).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Admin{}, fmt.Errorf("find admin: %w", err)
	}
	return admin, nil
}

// Seed inserts an admin when none exists with that email.
func (s *MongoStore) Seed(ctx context.Context, email, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.coll.UpdateOne(
		ctx,
		bson.M{"email": NormalizeEmail(email)},
		bson.M{"$setOnInsert": bson.M{
			"passwordHash": hash,
			"role":         RoleAdmin,
			"createdAt":    time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticator checks admin credentials and issues HS256 access tokens.
type Authenticator struct {
	finder Finder
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(finder Finder, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{finder: finder, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := a.finder.FindAdminByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":   admin.ID.Hex(),
		"role":  RoleAdmin,
		"email": admin.Email,
		"exp":   a.now().Add(a.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
