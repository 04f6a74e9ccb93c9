package product

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateProductRequest, createdBy string) Product {
	now := time.Now().UTC()

	return Product{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price.Round(2),
		Image:        req.Image,
		Category:     req.Category,
		CountInStock: req.CountInStock,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Apply copies an update payload onto p, keeping identity and creation data.
func (p Product) Apply(req UpdateProductRequest) Product {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price.Round(2)
	p.Image = req.Image
	p.Category = req.Category
	p.CountInStock = req.CountInStock
	p.UpdatedAt = time.Now().UTC()
	return p
}
