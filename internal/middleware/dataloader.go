package middleware

import (
	"context"
	"net/http"

	"github.com/rpattn/liftdesk/internal/entityloader"
	"github.com/rpattn/liftdesk/internal/repository"
)

type ctxKey string

const lookupLoaderKey ctxKey = "lookupLoader"

// DataLoaderMiddleware attaches a fresh lookup loader to every request context
func DataLoaderMiddleware(repo repository.LookupRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := entityloader.NewLookupLoader(repo)
			ctx := ContextWithLookupLoader(r.Context(), loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithLookupLoader stores loader in ctx.
func ContextWithLookupLoader(ctx context.Context, loader *entityloader.LookupLoader) context.Context {
	return context.WithValue(ctx, lookupLoaderKey, loader)
}

// LookupLoaderFromContext retrieves the request's lookup loader, or nil outside a request
func LookupLoaderFromContext(ctx context.Context) *entityloader.LookupLoader {
	if l, ok := ctx.Value(lookupLoaderKey).(*entityloader.LookupLoader); ok {
		return l
	}
	return nil
}
