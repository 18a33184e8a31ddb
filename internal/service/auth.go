package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/auth"
	"github.com/yourname/habittracker/internal/storage"
)

var validate = validator.New()

// ErrInvalidCredentials deliberately hides whether the email or the
// password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func ValidateRegisterRequest(req *RegisterRequest) error {
	return validate.Struct(req)
}

func ValidateLoginRequest(req *LoginRequest) error {
	return validate.Struct(req)
}

func Register(ctx context.Context, users storage.UserRepository, req *RegisterRequest) (*internal.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &internal.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func Login(ctx context.Context, users storage.UserRepository, req *LoginRequest) (*internal.User, error) {
	user, err := users.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// StartSession issues a session token for the user and stores its hash.
// The raw token goes into the cookie and is never persisted.
func StartSession(ctx context.Context, sessions storage.SessionRepository, secret string, user *internal.User, days int) (string, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return "", err
	}
	session := &internal.Session{
		TokenHash: auth.HashSessionToken(secret, token),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Duration(days) * 24 * time.Hour),
	}
	if err := sessions.CreateSession(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}
