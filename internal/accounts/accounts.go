package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"kgportal/internal/models"
)

var (
	// ErrInvalidCredentials is returned when the username or password is wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound is returned when no account has the given username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("username already taken")
	// ErrPasswordMismatch is returned when the confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrMissingFields is returned when username or password is blank.
	ErrMissingFields = errors.New("username and password are required")
)

// Service checks credentials and registers accounts.
type Service struct {
	users UserRepository
	cost  int
}

// NewService creates a Service backed by users.
func NewService(users UserRepository) *Service {
	return &Service{users: users, cost: bcrypt.DefaultCost}
}

// Authenticate returns the account matching username and password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Register creates a member account.
func (s *Service) Register(ctx context.Context, username, password, confirm string) (*models.User, error) {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	return s.create(ctx, username, password, models.UserTypeMember)
}

// EnsureAdmin creates the admin account unless it already exists.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.create(ctx, NormalizeUsername(username), password, models.UserTypeAdmin)
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	return err
}

// LinkIdentity returns the account bound to an identity provider uid,
// creating a member account named after the email (or the uid) on first
// sign-in. Such accounts have no password.
func (s *Service) LinkIdentity(ctx context.Context, uid, email string) (*models.User, error) {
	if uid == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByFirebaseUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	username := NormalizeUsername(email)
	if username == "" {
		username = NormalizeUsername(uid)
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user = &models.User{
		Username:    username,
		Email:       strings.TrimSpace(email),
		FirebaseUID: uid,
		UserType:    models.UserTypeMember,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// NormalizeUsername trims and lower-cases a username. Accounts are stored
// and looked up in this form only.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (s *Service) create(ctx context.Context, username, password string, userType models.UserType) (*models.User, error) {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		UserType:     userType,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
