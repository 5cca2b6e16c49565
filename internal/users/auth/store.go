// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
)

// ErrDuplicateEmail is returned by [UserRepository.Create] when the address is taken.
var ErrDuplicateEmail = errors.New("auth: email already registered")

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByEmail returns the account with the given email, compared
		case-insensitively.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User (CreatedAt is filled in)

		Returns:
		  - error: ErrDuplicateEmail or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces the stored password hash of an account.

		Parameters:
		  - context: context.Context
		  - id: string
		  - passwordHash: string (bcrypt)

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdatePassword(context context.Context, id string, passwordHash string) error
}
