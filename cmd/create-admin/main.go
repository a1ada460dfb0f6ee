// Command create-admin inserts a user into the users table. It is the only way
// to create the first admin, who then invites collaborators from the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/newsletter/internal/accounts"
	"github.com/dmitrymomot/newsletter/internal/domain"
	"github.com/dmitrymomot/newsletter/pkg/config"
	"github.com/dmitrymomot/newsletter/pkg/pg"
)

func main() {
	username := flag.String("username", "", "login name")
	password := flag.String("password", "", "password, 8 to 64 characters")
	role := flag.String("role", string(domain.RoleAdmin), "admin or collaborator")
	flag.Parse()

	if err := run(context.Background(), *username, *password, *role); err != nil {
		fmt.Fprintf(os.Stderr, "create-admin: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, username, password, rawRole string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		flag.Usage()
		return fmt.Errorf("username is required")
	}
	if err := accounts.ValidatePasswordLength(password); err != nil {
		return err
	}
	role, err := domain.ParseUserRole(rawRole)
	if err != nil {
		return err
	}

	var cfg pg.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	hasher, err := accounts.NewHasher(accounts.DefaultParams)
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}

	user := accounts.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := accounts.InsertUser(ctx, pool, user); err != nil {
		return err
	}

	fmt.Printf("created %s %q with id %s\n", user.Role, user.Username, user.ID)
	return nil
}
