package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"quizapp/models"
	"quizapp/repositories"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password register accepts.
const MinPasswordLength = 6

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

type AuthResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

type AuthService struct {
	users     UserStore
	hasher    *PasswordHasher
	tokens    *TokenService
	validate  *validator.Validate
	dummyHash string
}

func NewAuthService(users UserStore, hasher *PasswordHasher, tokens *TokenService) *AuthService {
	s := &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
	}
	// Compared against when the email is unknown, so both login failures cost
	// one bcrypt comparison.
	if hash, err := hasher.Hash("quizapp-unknown-user"); err == nil {
		s.dummyHash = hash
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return nil, NewValidationError("name", `"name" length must be between 2 and 50 characters`)
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, NewValidationError("email", `"email" must be a valid email`)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, NewValidationError("password", fmt.Sprintf(`"password" length must be at least %d characters long`, MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return nil, NewValidationError("password", fmt.Sprintf(`"password" length must be less than or equal to %d bytes long`, MaxPasswordBytes))
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.hasher.Compare(s.dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Compare(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.UserSummary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{
		Token: token,
		User:  user.Summary(),
	}, nil
}
