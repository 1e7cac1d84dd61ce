// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"strings"
)

const (
	MinNameLen     = 2
	MaxNameLen     = 50
	MinPasswordLen = 6
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
	RoleAdmin       Role = "admin"
)

type UserID string

type User struct {
	ID           UserID `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

// NormalizeEmail produces the canonical form stored and looked up in the
// user collection.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
