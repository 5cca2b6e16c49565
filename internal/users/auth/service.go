// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/chapterhub/internal/platform/apperr"
	"github.com/taibuivan/chapterhub/internal/platform/sec"
	"github.com/taibuivan/chapterhub/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, email, role string) (string, error)
}

// AdminCredentials is the configured administrator identity.
type AdminCredentials struct {
	Email    string
	Password string
}

// Service implements the login use case.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	admin          AdminCredentials
	logger         *slog.Logger
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider, admin AdminCredentials, logger *slog.Logger) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		admin:          admin,
		logger:         logger,
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a successful sign-in.
type LoginResult struct {
	Token string
	User  *User
}

/*
Login validates the administrator credentials and issues an access token.

Description: Both fields are compared in constant time against the configured
credentials. The account row is created on first use, and its stored hash is
refreshed when the configured password has changed since.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Signed token and account
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {
	emailMatch := subtle.ConstantTimeCompare([]byte(input.Email), []byte(service.admin.Email))
	passwordMatch := subtle.ConstantTimeCompare([]byte(input.Password), []byte(service.admin.Password))
	if emailMatch&passwordMatch != 1 {
		service.logger.WarnContext(context, "login_rejected")
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	user, err := service.ensureAdmin(context)
	if err != nil {
		return nil, err
	}

	token, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.InfoContext(context, "login_succeeded", slog.String("user_id", user.ID))

	return &LoginResult{Token: token, User: user}, nil
}

// ensureAdmin returns the administrator account, creating it when missing.
func (service *Service) ensureAdmin(context context.Context) (*User, error) {
	user, err := service.userRepository.FindByEmail(context, service.admin.Email)
	if err == nil {
		return service.syncPassword(context, user)
	}
	if !apperr.Is(err, "NOT_FOUND") {
		return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	hashedPassword, err := sec.HashPassword(service.admin.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user = &User{
		ID:           uuid.New(),
		Email:        service.admin.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleAdmin,
	}

	if err := service.userRepository.Create(context, user); err != nil {

		// A concurrent first login created the row between our lookup and insert.
		if errors.Is(err, ErrDuplicateEmail) {
			return service.userRepository.FindByEmail(context, service.admin.Email)
		}
		return nil, fmt.Errorf("auth_service_create_admin_failed: %w", err)
	}

	service.logger.InfoContext(context, "admin_account_created", slog.String("user_id", user.ID))

	return user, nil
}

// syncPassword re-hashes the stored password when it no longer matches the
// configured one.
func (service *Service) syncPassword(context context.Context, user *User) (*User, error) {
	if sec.CheckPasswordHash(service.admin.Password, user.PasswordHash) {
		return user, nil
	}

	hashedPassword, err := sec.HashPassword(service.admin.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return nil, fmt.Errorf("auth_service_password_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "admin_password_rotated", slog.String("user_id", user.ID))

	user.PasswordHash = hashedPassword
	return user, nil
}
