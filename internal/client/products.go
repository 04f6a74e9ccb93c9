package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/geocoder89/storefront/internal/domain/product"
)

type ProductPage struct {
	Items  []product.Product `json:"items"`
	Count  int               `json:"count"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// ListProducts fetches one page; zero limit uses the server default.
func (c *Client) ListProducts(ctx context.Context, limit, offset int) (ProductPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	path := "/api/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page ProductPage
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (product.Product, error) {
	var p product.Product
	err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &p)
	return p, err
}

func (c *Client) CreateProduct(ctx context.Context, req product.CreateProductRequest) (product.Product, error) {
	var p product.Product
	err := c.do(ctx, http.MethodPost, "/api/products", req, &p)
	return p, err
}

func (c *Client) UpdateProduct(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error) {
	var p product.Product
	err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), req, &p)
	return p, err
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil)
}
