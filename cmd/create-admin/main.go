// Command create-admin seeds the first admin account. It does nothing when an admin exists.
package main

import (
	"context"
	"flag"
	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/joho/godotenv"
	"log"
	"os"
	"strings"
	"time"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	name := flag.String("name", getenv("ADMIN_NAME", "Admin"), "admin display name")
	email := flag.String("email", getenv("ADMIN_EMAIL", "admin@nepshop.com"), "admin email")
	phone := flag.String("phone", os.Getenv("ADMIN_PHONE"), "admin phone (optional)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (or ADMIN_PASSWORD)")
	flag.Parse()

	if *password == "" {
		log.Fatal("a password is required: pass -password or set ADMIN_PASSWORD")
	}
	if len(*password) > auth.MaxPasswordBytes {
		log.Fatalf("password must be at most %d bytes", auth.MaxPasswordBytes)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	repo := &users.Repo{DB: db}
	if u, ok, err := repo.AnyAdmin(ctx); err != nil {
		log.Fatalf("look up admin: %v", err)
	} else if ok {
		log.Printf("admin already exists: id=%d email=%s", u.ID, u.Email)
		return
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	u, err := repo.Create(ctx, users.NewUser{
		Name:         strings.TrimSpace(*name),
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		Phone:        strings.TrimSpace(*phone),
		PasswordHash: hash,
		Role:         users.RoleAdmin,
	})
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("admin created: id=%d email=%s", u.ID, u.Email)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
