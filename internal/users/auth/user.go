// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements administrator sign-in.

The administrator identity comes from configuration. The matching row in
users.account is created on the first successful login and its ID becomes the
subject of every issued token.
*/
package auth

import (
	"time"

	"github.com/taibuivan/chapterhub/internal/platform/sec"
)

// # Domain Entities

// User represents an account allowed to sign in.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// # Field Identifiers

const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// # Client Messages

const (
	MsgMissingCredentials = "Please provide email and password"
	MsgInvalidCredentials = "Invalid credentials"
)

// ResourceUser names the account resource in not-found errors.
const ResourceUser = "User"
