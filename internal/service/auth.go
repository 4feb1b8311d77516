package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var validate = validator.New()

type AuthService struct {
	Users         UserStore
	Tokens        TokenStore
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

type RegisterInput struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6,max=72"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         tokens.RoleUser,
	}
	if err := s.Users.CreateUserIfNotExists(ctx, user); err != nil {
		l.Warn("register_error", "username", in.Username, "error", err)
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID.String())
	return user, nil
}

// Login accepts either the username or the e-mail address.
func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: login and password required", ErrValidation)
	}

	user, err := s.Users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			l.Warn("login_failed", "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password", "user_id", user.ID.String())
		return nil, ErrInvalidCredentials
	}

	res, refresh, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.Tokens.SaveRefresh(ctx, refresh); err != nil {
		return nil, err
	}

	l.Info("login_success", "user_id", user.ID.String())
	return res, nil
}

// Refresh rotates the refresh token: the presented one is revoked and a new
// pair is issued. A token can be used at most once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "reason", "bad token", "error", err)
		return nil, ErrInvalidRefreshToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	res, next, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.Tokens.RotateRefresh(ctx, claims.ID, next); err != nil {
		l.Warn("refresh_failed", "reason", "rotation rejected", "user_id", user.ID.String(), "error", err)
		return nil, err
	}

	l.Info("refresh_success", "user_id", user.ID.String())
	return res, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Tokens.RevokeByHash(ctx, tokens.Sha256Hex(refreshToken))
}

func (s *AuthService) issue(user *models.User) (*LoginResult, *models.RefreshToken, error) {
	now := time.Now().UTC()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	access, err := tokens.SignAccess(s.AccessSecret, user.ID.String(), user.Role, accessExp)
	if err != nil {
		return nil, nil, err
	}
	refresh, jti, err := tokens.SignRefresh(s.RefreshSecret, user.ID.String(), refreshExp)
	if err != nil {
		return nil, nil, err
	}

	rt := &models.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		TokenHash: tokens.Sha256Hex(refresh),
		ExpiresAt: refreshExp,
	}
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, rt, nil
}
