package auth

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/users"
	"strings"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials")
	ErrRegisterFields     = apperr.Invalid("Name, password, and email or phone are required")
	ErrLoginFields        = apperr.Invalid("Email or phone and password are required")
	ErrPasswordTooLong    = apperr.Invalid("Password must be at most 72 bytes")
)

type UserStore interface {
	Create(ctx context.Context, nu users.NewUser) (users.User, error)
	ExistsByContact(ctx context.Context, email, phone string) (bool, error)
	FindByContact(ctx context.Context, email, phone string) (users.User, error)
}

type Service struct {
	Users  UserStore
	Tokens *Tokens
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type Session struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.Password == "" || (in.Email == "" && in.Phone == "") {
		return Session{}, ErrRegisterFields
	}
	if len(in.Password) > MaxPasswordBytes {
		return Session{}, ErrPasswordTooLong
	}

	exists, err := s.Users.ExistsByContact(ctx, in.Email, in.Phone)
	if err != nil {
		return Session{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return Session{}, users.ErrExists
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	// the unique constraints still catch a concurrent registration and report ErrExists
	u, err := s.Users.Create(ctx, users.NewUser{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         users.RoleCustomer,
	})
	if err != nil {
		return Session{}, err
	}
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Password == "" || (in.Email == "" && in.Phone == "") {
		return Session{}, ErrLoginFields
	}

	u, err := s.Users.FindByContact(ctx, in.Email, in.Phone)
	if errors.Is(err, users.ErrNotFound) {
		burnCompare(in.Password)
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("find user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, in.Password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *Service) session(u users.User) (Session, error) {
	token, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, User: u}, nil
}
