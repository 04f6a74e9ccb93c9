// Package actorctx carries the authenticated identity on a context.Context so
// code below the HTTP layer can see who is acting without importing gin.
package actorctx

import (
	"context"

	"github.com/geocoder89/storefront/internal/auth"
)

type ctxKey struct{}

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(auth.Identity)
	return id, ok && id.AccountID != ""
}

// AccountIDFrom is a shortcut for code that only needs the acting account.
func AccountIDFrom(ctx context.Context) (string, bool) {
	id, ok := IdentityFrom(ctx)
	return id.AccountID, ok
}
