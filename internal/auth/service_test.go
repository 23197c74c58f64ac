package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/users"
)

type memUsers struct {
	mu   sync.Mutex
	rows []users.User
}

func (m *memUsers) Create(_ context.Context, nu users.NewUser) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if (nu.Email != "" && u.Email == nu.Email) || (nu.Phone != "" && u.Phone == nu.Phone) {
			return users.User{}, users.ErrExists
		}
	}
	u := users.User{ID: int64(len(m.rows) + 1), Name: nu.Name, Email: nu.Email, Phone: nu.Phone,
		PasswordHash: nu.PasswordHash, Role: nu.Role}
	m.rows = append(m.rows, u)
	return u, nil
}

func (m *memUsers) ExistsByContact(_ context.Context, email, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if (email != "" && u.Email == email) || (phone != "" && u.Phone == phone) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) FindByContact(_ context.Context, email, phone string) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if (email != "" && u.Email == email) || (email == "" && u.Phone == phone) {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func newService() *Service {
	return &Service{Users: &memUsers{}, Tokens: NewTokens("test-secret", time.Hour)}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Name: "Sita", Email: "Sita@Example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.Token == "" || sess.User.Role != users.RoleCustomer {
		t.Fatalf("session = %+v", sess)
	}
	if sess.User.PasswordHash == "pw" {
		t.Fatal("password stored in clear text")
	}

	login, err := svc.Login(ctx, LoginInput{Email: "sita@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	p, err := svc.Tokens.Parse(login.Token)
	if err != nil || p.UserID != sess.User.ID {
		t.Fatalf("token principal = %+v, %v", p, err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.io", Phone: "9800000001", Password: "pw"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []RegisterInput{
		{Name: "B", Email: "a@x.io", Password: "pw"},
		{Name: "C", Phone: "9800000001", Password: "pw"},
		{Name: "D", Email: "d@x.io", Phone: "9800000001", Password: "pw"},
	}
	for _, in := range tests {
		if _, err := svc.Register(ctx, in); !errors.Is(err, users.ErrExists) {
			t.Errorf("Register(%+v) err = %v, want ErrExists", in, err)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newService()
	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"missing name", RegisterInput{Email: "a@x.io", Password: "pw"}, ErrRegisterFields},
		{"missing password", RegisterInput{Name: "A", Email: "a@x.io"}, ErrRegisterFields},
		{"missing contact", RegisterInput{Name: "A", Password: "pw"}, ErrRegisterFields},
		{"password over 72 bytes", RegisterInput{Name: "A", Email: "a@x.io", Password: strings.Repeat("p", 73)}, ErrPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if apperr.KindOf(err) != apperr.KindInvalid {
				t.Fatalf("kind = %v, want invalid", apperr.KindOf(err))
			}
		})
	}

	sess, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.io", Password: strings.Repeat("p", 72)})
	if err != nil || sess.Token == "" {
		t.Fatalf("72-byte password: %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Phone: "9811111111", Password: "right"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, LoginInput{Phone: "9811111111", Password: "wrong"})
	_, noAccount := svc.Login(ctx, LoginInput{Phone: "9822222222", Password: "wrong"})

	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(noAccount, ErrInvalidCredentials) {
		t.Fatalf("errors = %v / %v, want ErrInvalidCredentials for both", wrongPassword, noAccount)
	}
	if wrongPassword.Error() != noAccount.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, noAccount)
	}

	if _, err := svc.Login(ctx, LoginInput{Password: "x"}); !errors.Is(err, ErrLoginFields) {
		t.Fatalf("missing contact err = %v", err)
	}
}
