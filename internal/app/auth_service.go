package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pinmap/internal/model"
	"pinmap/internal/pkg/jwtutil"
	"pinmap/internal/repository"
)

const (
	maxUsernameLength = 64
	maxEmailLength    = 128
	// bcrypt only looks at the first 72 bytes and newer versions reject more.
	maxPasswordBytes = 72
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type AuthService struct {
	userRepo      UserStore
	publisher     EventPublisher
	jwtSecret     string
	jwtExpiration time.Duration
	bcryptCost    int
	// compared against when the username is unknown so both failure paths
	// cost one bcrypt comparison
	dummyHash []byte
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	User      model.UserPublicView
	Token     string
	ExpiresAt time.Time
}

func NewAuthService(
	userRepo UserStore,
	publisher EventPublisher,
	jwtSecret string,
	jwtExpiration time.Duration,
	bcryptCost int,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 2 * time.Hour
	}
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("pinmap-dummy-password"), bcryptCost)
	return &AuthService{
		userRepo:      userRepo,
		publisher:     publisher,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		bcryptCost:    bcryptCost,
		dummyHash:     dummyHash,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.UserPublicView, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	password := input.Password

	switch {
	case username == "":
		return nil, invalid("username", "username is required")
	case len(username) > maxUsernameLength:
		return nil, invalid("username", "username must be at most %d characters", maxUsernameLength)
	case email == "":
		return nil, invalid("email", "email is required")
	case len(email) > maxEmailLength:
		return nil, invalid("email", "email must be at most %d characters", maxEmailLength)
	case password == "":
		return nil, invalid("password", "password is required")
	case len(password) > maxPasswordBytes:
		return nil, invalid("password", "password must be at most %d bytes", maxPasswordBytes)
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeFailure(err)
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameExists
		}
		return nil, storeFailure(err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)

	view := user.PublicView()
	publishEvent(ctx, s.publisher, model.Event{Type: model.EventUserRegistered, User: &view})
	return &view, nil
}

// Login reports ErrInvalidCredential for every credential failure so that
// callers cannot tell an unknown username from a wrong password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidCredential
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(input.Password))
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, expiresAt, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user.PublicView(), Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.UserPublicView, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	view := user.PublicView()
	return &view, nil
}
