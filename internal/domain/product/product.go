package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	Category     string          `json:"category,omitempty"`
	CountInStock int             `json:"countInStock"`
	CreatedBy    string          `json:"createdBy,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type ListFilter struct {
	Limit  int
	Offset int
}

var ErrNotFound = errors.New("product not found")

// Price decodes from "19.99" or 19.99; validation sees it as a float via the
// custom type func registered in handlers.RegisterValidators.
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"omitempty,max=2000"`
	Price        decimal.Decimal `json:"price" binding:"required,gt=0"`
	Image        string          `json:"image" binding:"omitempty,max=1000"`
	Category     string          `json:"category" binding:"omitempty,max=80"`
	CountInStock int             `json:"countInStock" binding:"min=0"`
}

// a full update payload, same shape as create.
type UpdateProductRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"omitempty,max=2000"`
	Price        decimal.Decimal `json:"price" binding:"required,gt=0"`
	Image        string          `json:"image" binding:"omitempty,max=1000"`
	Category     string          `json:"category" binding:"omitempty,max=80"`
	CountInStock int             `json:"countInStock" binding:"min=0"`
}
