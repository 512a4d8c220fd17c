package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"sportrent/internal/config"
	"sportrent/internal/models"
	"sportrent/internal/repository"
	"sportrent/internal/security"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password, so
	// login responses never reveal which accounts exist.
	ErrInvalidCredentials = errors.New("Invalid Email or Password")
	ErrEmailTaken         = errors.New("User with given email already exists!")
	ErrUserNameTaken      = errors.New("User with given username already exists!")
	ErrAdminKeyInvalid    = errors.New("Invalid admin creation key")
)

type AuthService struct {
	users repository.UserStore
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewAuthService(users repository.UserStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		cfg:   cfg,
		log:   log,
	}
}

type SignupInput struct {
	FullName    string
	UserName    string
	Email       string
	PhoneNumber string
	Password    string
	Role        string
	AdminKey    string
}

// Signup assumes structural validation has already passed. It runs the
// uniqueness probes in contract order (email first, then username), guards
// role elevation behind the admin-creation key, and persists the user with
// a hashed password.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (models.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.User{}, err
	}

	if _, err := s.users.FindByUserName(ctx, input.UserName); err == nil {
		return models.User{}, ErrUserNameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.User{}, err
	}

	role := models.UserRoleUser
	if input.Role == string(models.UserRoleAdmin) {
		if input.AdminKey == "" || input.AdminKey != s.cfg.Security.AdminCreationKey {
			return models.User{}, ErrAdminKeyInvalid
		}
		role = models.UserRoleAdmin
	}

	passwordHash, err := security.HashPassword(input.Password, s.cfg.Security.BcryptCost)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.Create(ctx, models.User{
		FullName:     strings.TrimSpace(input.FullName),
		UserName:     input.UserName,
		Email:        email,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: passwordHash,
		Role:         role,
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info().Str("user_id", user.ID.Hex()).Str("role", string(role)).Msg("user created")
	return user, nil
}

type LoginResult struct {
	Token string
	User  models.User
}

func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := security.GenerateToken(
		s.cfg.Security.JWTSecret,
		user.ID.Hex(),
		user.Email,
		string(user.Role),
		s.cfg.Security.TokenTTL,
	)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, User: user}, nil
}
