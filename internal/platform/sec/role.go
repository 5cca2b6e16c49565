// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// RoleAdmin may upload chapters.
	RoleAdmin UserRole = "admin"

	// RoleUser is the default role; read-only access.
	RoleUser UserRole = "user"
)

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
