package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/account"
)

type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (account.Account, error)
	Insert(ctx context.Context, a account.Account) (account.Account, error)
}

type Hasher interface {
	Hash(plain string) (string, error)
}

// EnsureAdminAccount creates the configured administrator when no account
// with that email exists yet. An existing account is left untouched, even if
// it is not an admin.
func EnsureAdminAccount(ctx context.Context, store AdminStore, hasher Hasher, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := store.FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		return err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	created, err := store.Insert(ctx, account.Account{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// another instance won the race
		if errors.Is(err, account.ErrEmailTaken) {
			return nil
		}
		return err
	}

	slog.Default().InfoContext(ctx, "admin account created", "account_id", created.ID, "email", created.Email)
	return nil
}
