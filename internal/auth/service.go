// Package auth handles accounts: registration, password checks and the
// tokens the transport layer resolves identities from.
package auth

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"golang.org/x/crypto/bcrypt"

	"github.com/dkeye/Chat/internal/domain"
)

var (
	// ErrInvalidCredentials is returned when login credentials are wrong.
	// Unknown user and bad password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong guards bcrypt's 72-byte input limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

const bcryptCost = 12

// avatars ships with the static UI; registration picks one per user.
var avatars = []string{
	"avatar1.png", "avatar2.png", "avatar3.png", "avatar4.png",
	"avatar5.png", "avatar6.png", "avatar7.png", "avatar8.png",
}

// Accounts is the slice of the persistence gateway auth needs.
type Accounts interface {
	CreateUser(ctx context.Context, identity domain.Identity, displayName, avatar, passwordHash string) (*domain.User, error)
	FindUser(ctx context.Context, identity domain.Identity) (*domain.User, error)
	CredentialsOf(ctx context.Context, identity domain.Identity) (string, error)
}

type Service struct {
	store  Accounts
	tokens *TokenManager
}

func NewService(store Accounts, tokens *TokenManager) *Service {
	return &Service{store: store, tokens: tokens}
}

// Register creates a new account with a hashed password and a
// deterministic avatar.
func (s *Service) Register(ctx context.Context, username domain.Identity, displayName, password string) (*domain.User, error) {
	if err := domain.ValidateUsername(string(username)); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}
	if displayName == "" {
		displayName = string(username)
	}
	if len(displayName) > domain.MaxDisplayNameLen {
		displayName = displayName[:domain.MaxDisplayNameLen]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.store.CreateUser(ctx, username, displayName, pickAvatar(username), string(hash))
}

// Login verifies credentials and returns a signed token plus the user.
func (s *Service) Login(ctx context.Context, username domain.Identity, password string) (string, *domain.User, error) {
	storedHash, err := s.store.CredentialsOf(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	user, err := s.store.FindUser(ctx, username)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Resolve maps a bearer token back to the identity it was issued for.
func (s *Service) Resolve(token string) (domain.Identity, error) {
	return s.tokens.Verify(token)
}

func pickAvatar(username domain.Identity) string {
	h := fnv.New32a()
	h.Write([]byte(username))
	return avatars[h.Sum32()%uint32(len(avatars))]
}
