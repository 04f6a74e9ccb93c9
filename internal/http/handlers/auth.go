package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/storefront/internal/apperr"
	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/gin-gonic/gin"
)

// Authenticator is satisfied by *auth.Service.
type Authenticator interface {
	Register(ctx context.Context, in auth.RegisterInput) (auth.Session, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Profile(ctx context.Context, id auth.Identity) (account.Profile, error)
}

type AuthHandler struct {
	svc  Authenticator
	prom *observability.Prom
}

func NewAuthHandler(svc Authenticator, prom *observability.Prom) *AuthHandler {
	RegisterValidators()
	return &AuthHandler{svc: svc, prom: prom}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	IsAdmin  bool   `json:"isAdmin"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withRequestTimeout(ctx, 3*time.Second)
	defer cancel()

	sess, err := h.svc.Register(cctx, auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	h.prom.ObserveAuth("register", outcome(err))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, sess)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withRequestTimeout(ctx, 2*time.Second)
	defer cancel()

	sess, err := h.svc.Login(cctx, req.Email, req.Password)
	h.prom.ObserveAuth("login", outcome(err))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) Profile(ctx *gin.Context) {
	id, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Not authorized, no token")
		return
	}

	cctx, cancel := withRequestTimeout(ctx, 2*time.Second)
	defer cancel()

	p, err := h.svc.Profile(cctx, id)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperr.KindOf(err) == apperr.KindInternal:
		return "error"
	default:
		return "rejected"
	}
}

// withRequestTimeout bounds storage work while keeping the request's trace
// and identity values.
func withRequestTimeout(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx.Request == nil {
		return config.WithTimeout(d)
	}
	return context.WithTimeout(ctx.Request.Context(), d)
}
