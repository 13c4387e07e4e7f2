package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

// memoryUserStore is a minimal in-memory UserStore for auth tests.
type memoryUserStore struct {
	byEmail map[string]*models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{byEmail: make(map[string]*models.User)}
}

func (s *memoryUserStore) CreateUser(ctx context.Context, user *models.User) error {
	s.byEmail[user.Email] = user
	return nil
}

func (s *memoryUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, storage.ErrNotFound
}

func (s *memoryUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("admin@coop.test", "Ada", "hash")

	t.Run("round-trips claims", func(t *testing.T) {
		token, err := manager.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		claims, err := manager.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.UserID() != user.ID {
			t.Errorf("Expected user ID %s, got %s", user.ID, claims.UserID())
		}
		if claims.Email != user.Email {
			t.Errorf("Expected email %s, got %s", user.Email, claims.Email)
		}
	})

	t.Run("rejects a token from a foreign issuer", func(t *testing.T) {
		foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			Email: user.Email,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   user.ID,
				Issuer:    "some-other-service",
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		token, err := foreign.SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("SignedString failed: %v", err)
		}

		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		token, err := other.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		token, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := manager.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	authenticator := NewPasswordAuthenticator(newMemoryUserStore())

	t.Run("register hashes the password", func(t *testing.T) {
		user, err := authenticator.Register(ctx, "admin@coop.test", "Ada", "long-enough-password")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.PasswordHash == "long-enough-password" {
			t.Error("Expected password to be hashed")
		}
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		_, err := authenticator.Register(ctx, "short@coop.test", "S", "short")
		if !errors.Is(err, ErrWeakPassword) {
			t.Errorf("Expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := authenticator.Register(ctx, "admin@coop.test", "Dup", "long-enough-password")
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("authenticates valid credentials", func(t *testing.T) {
		user, err := authenticator.Authenticate(ctx, "admin@coop.test", "long-enough-password")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if user.Email != "admin@coop.test" {
			t.Errorf("Unexpected user: %+v", user)
		}
	})

	t.Run("rejects wrong password and unknown email", func(t *testing.T) {
		if _, err := authenticator.Authenticate(ctx, "admin@coop.test", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := authenticator.Authenticate(ctx, "nobody@coop.test", "whatever-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})
}
