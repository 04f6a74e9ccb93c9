package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProductsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{pool: pool, prom: prom}
}

func (r *ProductsRepo) observe(op string, fn func() error) error {
	return r.prom.ObserveDB(op, fn)
}

const productColumns = `id, name, description, price, image, category, count_in_stock,
	COALESCE(created_by::text, ''), created_at, updated_at`

func scanProduct(row pgx.Row, extra ...any) (product.Product, error) {
	var p product.Product
	dest := []any{
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Category,
		&p.CountInStock, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return p, err
}

// nullableID maps an empty or non-uuid actor to NULL.
func nullableID(id string) any {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	return id
}

func (r *ProductsRepo) Create(ctx context.Context, p product.Product) (product.Product, error) {
	err := r.observe("products.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO products (id, name, description, price, image, category, count_in_stock, created_by, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, p.Name, p.Description, p.Price, p.Image, p.Category, p.CountInStock,
			nullableID(p.CreatedBy), p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (p product.Product, err error) {
	if _, perr := uuid.Parse(id); perr != nil {
		return product.Product{}, product.ErrNotFound
	}

	err = r.observe("products.get_by_id", func() error {
		p, err = scanProduct(r.pool.QueryRow(ctx,
			`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, product.ErrNotFound
	}
	return p, err
}

// List returns one page, newest first, and the total row count.
func (r *ProductsRepo) List(ctx context.Context, f product.ListFilter) ([]product.Product, int, error) {
	out := make([]product.Product, 0, f.Limit)
	total := 0

	err := r.observe("products.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+productColumns+`, COUNT(*) OVER() AS total
			 FROM products
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1 OFFSET $2`,
			f.Limit, f.Offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t int
			p, err := scanProduct(rows, &t)
			if err != nil {
				return err
			}
			total = t
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	// an offset past the end returns no rows and so no window count
	if len(out) == 0 && f.Offset > 0 {
		err = r.observe("products.count", func() error {
			return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
		})
		if err != nil {
			return nil, 0, err
		}
	}

	return out, total, nil
}

func (r *ProductsRepo) Update(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	next := current.Apply(req)

	var updated product.Product
	err = r.observe("products.update", func() error {
		updated, err = scanProduct(r.pool.QueryRow(ctx,
			`UPDATE products
			 SET name = $2, description = $3, price = $4, image = $5,
			     category = $6, count_in_stock = $7, updated_at = $8
			 WHERE id = $1
			 RETURNING `+productColumns,
			id, next.Name, next.Description, next.Price, next.Image,
			next.Category, next.CountInStock, next.UpdatedAt,
		))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, product.ErrNotFound
	}
	if err != nil {
		return product.Product{}, err
	}
	return updated, nil
}

func (r *ProductsRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return product.ErrNotFound
	}

	var affected int64
	err := r.observe("products.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return product.ErrNotFound
	}
	return nil
}
