package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/google/uuid"
)

type AccountsRepo struct {
	mu      sync.RWMutex
	byID    map[string]account.Account
	byEmail map[string]string // email -> id
}

func NewAccountsRepo() *AccountsRepo {
	return &AccountsRepo{
		byID:    make(map[string]account.Account),
		byEmail: make(map[string]string),
	}
}

func (r *AccountsRepo) FindByEmail(_ context.Context, email string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *AccountsRepo) GetByID(_ context.Context, id string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

func (r *AccountsRepo) Insert(_ context.Context, a account.Account) (account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[a.Email]; taken {
		return account.Account{}, account.ErrEmailTaken
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	r.byID[a.ID] = a
	r.byEmail[a.Email] = a.ID
	return a, nil
}
