package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/storefront/internal/domain/product"
)

type ProductsRepo struct {
	mu    sync.RWMutex
	items map[string]product.Product
}

func NewProductsRepo() *ProductsRepo {
	return &ProductsRepo{
		items: make(map[string]product.Product),
	}
}

func (r *ProductsRepo) Create(_ context.Context, p product.Product) (product.Product, error) {
	r.mu.Lock()
	r.items[p.ID] = p
	r.mu.Unlock()

	return p, nil
}

func (r *ProductsRepo) GetByID(_ context.Context, id string) (product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

// List orders newest first, matching the postgres repo.
func (r *ProductsRepo) List(_ context.Context, filter product.ListFilter) ([]product.Product, int, error) {
	r.mu.RLock()
	all := make([]product.Product, 0, len(r.items))
	for _, p := range r.items {
		all = append(all, p)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}

	return all[start:end], total, nil
}

func (r *ProductsRepo) Update(_ context.Context, id string, req product.UpdateProductRequest) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	p = p.Apply(req)
	r.items[id] = p
	return p, nil
}

func (r *ProductsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return product.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
