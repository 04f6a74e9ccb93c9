package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/storefront/internal/actorctx"
	"github.com/geocoder89/storefront/internal/cache"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/geocoder89/storefront/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultProductsLimit = 20
	maxProductsLimit     = 100
)

type ProductsStore interface {
	Create(ctx context.Context, p product.Product) (product.Product, error)
	GetByID(ctx context.Context, id string) (product.Product, error)
	List(ctx context.Context, filter product.ListFilter) ([]product.Product, int, error)
	Update(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductsHandler struct {
	repo  ProductsStore
	cache cache.ProductListCache
	prom  *observability.Prom
}

func NewProductsHandler(repo ProductsStore, listCache cache.ProductListCache, prom *observability.Prom) *ProductsHandler {
	RegisterValidators()
	return &ProductsHandler{repo: repo, cache: listCache, prom: prom}
}

func (h *ProductsHandler) ListProducts(ctx *gin.Context) {
	limit, offset, ok := parsePage(ctx)
	if !ok {
		return
	}

	cctx, cancel := withRequestTimeout(ctx, 2*time.Second)
	defer cancel()

	key := utils.BuildProductsListCacheKey(limit, offset)

	var page cache.ProductPage
	hit := false
	if h.cache != nil {
		page, hit = h.cache.GetList(cctx, key)
		h.prom.ObserveProductCache(hit)
	}

	if !hit {
		items, total, err := h.repo.List(cctx, product.ListFilter{Limit: limit, Offset: offset})
		if err != nil {
			RespondInternal(ctx, "Could not list products")
			return
		}
		page = cache.ProductPage{Items: items, Total: total}
		if h.cache != nil {
			h.cache.SetList(cctx, key, page)
		}
	}

	if page.Items == nil {
		page.Items = []product.Product{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items":  page.Items,
		"count":  len(page.Items),
		"total":  page.Total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *ProductsHandler) GetProduct(ctx *gin.Context) {
	cctx, cancel := withRequestTimeout(ctx, 2*time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, ctx.Param("id"))
	if err != nil {
		h.respondRepoError(ctx, err, "Could not fetch product")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

func (h *ProductsHandler) CreateProduct(ctx *gin.Context) {
	var req product.CreateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withRequestTimeout(ctx, 3*time.Second)
	defer cancel()

	createdBy, _ := actorctx.AccountIDFrom(cctx)

	p, err := h.repo.Create(cctx, product.NewFromCreateRequest(req, createdBy))
	if err != nil {
		RespondInternal(ctx, "Could not create product")
		return
	}

	h.invalidateLists(cctx)
	ctx.JSON(http.StatusCreated, p)
}

func (h *ProductsHandler) UpdateProduct(ctx *gin.Context) {
	var req product.UpdateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withRequestTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := h.repo.Update(cctx, ctx.Param("id"), req)
	if err != nil {
		h.respondRepoError(ctx, err, "Could not update product")
		return
	}

	h.invalidateLists(cctx)
	ctx.JSON(http.StatusOK, p)
}

func (h *ProductsHandler) DeleteProduct(ctx *gin.Context) {
	cctx, cancel := withRequestTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, ctx.Param("id")); err != nil {
		h.respondRepoError(ctx, err, "Could not delete product")
		return
	}

	h.invalidateLists(cctx)
	ctx.Status(http.StatusNoContent)
}

func (h *ProductsHandler) invalidateLists(ctx context.Context) {
	if h.cache != nil {
		h.cache.InvalidateLists(ctx)
	}
}

func (h *ProductsHandler) respondRepoError(ctx *gin.Context, err error, internalMsg string) {
	if errors.Is(err, product.ErrNotFound) {
		RespondNotFound(ctx, "Product not found")
		return
	}
	RespondInternal(ctx, internalMsg)
}

// parsePage reads limit/offset, writing a 400 and returning false on bad input.
func parsePage(ctx *gin.Context) (limit, offset int, ok bool) {
	limit = defaultProductsLimit

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxProductsLimit {
			RespondBadRequest(ctx, "Invalid query parameters", gin.H{
				"fields": []FieldError{{Field: "limit", Rule: "range", Message: "must be between 1 and " + strconv.Itoa(maxProductsLimit)}},
			})
			return 0, 0, false
		}
		limit = n
	}

	if raw := ctx.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondBadRequest(ctx, "Invalid query parameters", gin.H{
				"fields": []FieldError{{Field: "offset", Rule: "min", Param: "0", Message: validationMessage("min", "0")}},
			})
			return 0, 0, false
		}
		offset = n
	}

	return limit, offset, true
}
