package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAccountsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AccountsRepo {
	return &AccountsRepo{pool: pool, prom: prom}
}

func (r *AccountsRepo) observe(op string, fn func() error) error {
	return r.prom.ObserveDB(op, fn)
}

const accountColumns = `id, name, email, password_hash, is_admin, created_at, updated_at`

func scanAccount(row pgx.Row) (account.Account, error) {
	var a account.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AccountsRepo) FindByEmail(ctx context.Context, email string) (a account.Account, err error) {
	err = r.observe("accounts.find_by_email", func() error {
		a, err = scanAccount(r.pool.QueryRow(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return account.Account{}, account.ErrNotFound
	}
	return a, err
}

func (r *AccountsRepo) GetByID(ctx context.Context, id string) (a account.Account, err error) {
	if _, perr := uuid.Parse(id); perr != nil {
		return account.Account{}, account.ErrNotFound
	}

	err = r.observe("accounts.get_by_id", func() error {
		a, err = scanAccount(r.pool.QueryRow(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return account.Account{}, account.ErrNotFound
	}
	return a, err
}

func (r *AccountsRepo) Insert(ctx context.Context, a account.Account) (account.Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	err := r.observe("accounts.insert", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO accounts (id, name, email, password_hash, is_admin, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.ID, a.Name, a.Email, a.PasswordHash, a.IsAdmin, a.CreatedAt, a.UpdatedAt,
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return account.Account{}, account.ErrEmailTaken
		}
		return account.Account{}, err
	}
	return a, nil
}
