package users

import (
	"fmt"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type User struct {
	ID           int64     `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type NewUser struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
}

var (
	ErrExists   = apperr.Conflict("User already exists")
	ErrNotFound = apperr.NotFound("User not found")
)
