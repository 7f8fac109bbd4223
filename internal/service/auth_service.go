package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dom/videotube-backend/internal/apperr"
	"github.com/dom/videotube-backend/internal/config"
	"github.com/dom/videotube-backend/internal/domain"
	"github.com/dom/videotube-backend/internal/media"
	"github.com/dom/videotube-backend/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

var (
	ErrUnauthorized       = apperr.Unauthorized("Unauthorized request")
	errInvalidCredentials = apperr.Unauthorized("Invalid credentials")
	errPasswordTooLong    = apperr.Validation("Password must be at most 72 bytes")
)

type AuthService struct {
	userRepo repository.UserRepository
	relay    media.Relay
	access   *TokenIssuer
	refresh  *TokenIssuer
	cfg      *config.Config
	log      *slog.Logger
}

func NewAuthService(userRepo repository.UserRepository, relay media.Relay, cfg *config.Config, log *slog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		relay:    relay,
		access:   NewTokenIssuer(AccessTokenKind, cfg.AccessTokenSecret, cfg.AccessTokenExpiry),
		refresh:  NewTokenIssuer(RefreshTokenKind, cfg.RefreshTokenSecret, cfg.RefreshTokenExpiry),
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	AvatarPath string
	CoverPath  string
}

type LoginInput struct {
	Email    string
	Username string
	Password string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) AccessTokenTTL() time.Duration  { return s.access.TTL() }
func (s *AuthService) RefreshTokenTTL() time.Duration { return s.refresh.TTL() }

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if missing := missingFields(
		"username", input.Username,
		"email", input.Email,
		"fullName", input.FullName,
		"password", input.Password,
	); len(missing) > 0 {
		return nil, apperr.Validation("Missing required fields", missing...)
	}
	if domain.PasswordTooLong(input.Password) {
		return nil, errPasswordTooLong
	}

	username := domain.NormalizeUsername(input.Username)
	email := domain.NormalizeEmail(input.Email)

	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing != nil:
		return nil, apperr.Conflict("User with same email or username already exists")
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, apperr.Internal("Something went wrong while creating user", err)
	}

	if input.AvatarPath == "" {
		return nil, apperr.Validation("Avatar is required")
	}

	avatar, err := s.relay.Upload(ctx, input.AvatarPath)
	if err != nil || avatar == nil {
		return nil, apperr.Internal("Error uploading avatar", err)
	}

	var coverURL string
	cover, err := s.relay.Upload(ctx, input.CoverPath)
	if err != nil {
		s.log.WarnContext(ctx, "cover image upload failed, continuing without it", "username", username, "error", err)
	} else if cover != nil {
		coverURL = cover.URL
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		Avatar:       avatar.URL,
		CoverImage:   coverURL,
		WatchHistory: datatypes.JSONSlice[uuid.UUID]{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.SetPassword(input.Password); err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, errPasswordTooLong
		}
		return nil, apperr.Internal("Something went wrong while creating user", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, apperr.Conflict("User with same email or username already exists")
		}
		return nil, apperr.Internal("Something went wrong while creating user", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if !s.hasLoginIdentifiers(input) {
		return nil, apperr.Validation("Missing required credentials")
	}

	user, err := s.userRepo.FindByUsernameOrEmail(ctx,
		domain.NormalizeUsername(input.Username),
		domain.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperr.NotFound("User does not exist")
		}
		return nil, apperr.Internal("Something went wrong while logging in", err)
	}

	if !user.PasswordMatches(input.Password) {
		return nil, errInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// hasLoginIdentifiers applies the configured policy: "all" needs email,
// username and password; "any" needs password plus email or username.
func (s *AuthService) hasLoginIdentifiers(input LoginInput) bool {
	if input.Password == "" {
		return false
	}
	if s.cfg.LoginIdentifierPolicy == config.LoginRequireAny {
		return input.Email != "" || input.Username != ""
	}
	return input.Email != "" && input.Username != ""
}

func (s *AuthService) Logout(ctx context.Context, user *domain.User) error {
	if user == nil {
		return ErrUnauthorized
	}
	if domain.PasswordTooLong(input.NewPassword) {
		return errPasswordTooLong
	}
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, ""); err != nil {
		return apperr.Internal("Something went wrong while logging out", err)
	}
	return nil
}

// RefreshTokens rotates the session. The presented token must be the one on
// record; a superseded or logged-out token is rejected.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, apperr.Validation("Refresh token is required")
	}

	claims, err := s.refresh.Verify(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	userID, _ := claims.UserID()
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Something went wrong while refreshing token", err)
	}

	if !user.HasSession(refreshToken) {
		s.log.WarnContext(ctx, "refresh token reuse rejected", "user_id", user.ID)
		return nil, apperr.Unauthorized("Refresh token is expired or used")
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, input ChangePasswordInput) error {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return apperr.Validation("Missing required fields")
	}
	if user == nil {
		return ErrUnauthorized
	}

	if !user.PasswordMatches(input.CurrentPassword) {
		return errInvalidCredentials
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return errPasswordTooLong
		}
		return apperr.Internal("Something went wrong while updating password", err)
	}
	if err := s.userRepo.SetPasswordHash(ctx, user.ID, user.PasswordHash); err != nil {
		return apperr.Internal("Something went wrong while updating password", err)
	}
	return nil
}

// Authenticate resolves the user behind an access token. Every failure
// collapses into the same unauthorized error.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.access.Verify(accessToken)
	if err != nil {
		s.log.DebugContext(ctx, "access token rejected", "error", err)
		return nil, ErrUnauthorized
	}

	userID, _ := claims.UserID()
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.log.DebugContext(ctx, "access token subject not resolved", "user_id", userID, "error", err)
		return nil, ErrUnauthorized
	}
	return user, nil
}

// startSession issues a token pair and records the refresh token, replacing
// any previous one.
func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.access.Issue(user)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}
	refreshToken, err := s.refresh.Issue(user)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}
	user.RefreshToken = refreshToken

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// missingFields takes name/value pairs and returns the names whose value is blank.
func missingFields(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}
