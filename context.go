package graceful

import (
	"context"
	"net/http"
)

type contextKey[T any] struct{}

// SetValue stores a typed value in the request context. Authentication or
// other host middleware uses it to hand per-request context (for example the
// authenticated user) to handlers without the dispatcher knowing about it.
func SetValue[T any](r *http.Request, val T) *http.Request {
	ctx := context.WithValue(r.Context(), contextKey[T]{}, val)
	return r.WithContext(ctx)
}

// GetValue retrieves a typed value stored by SetValue. For use in handlers.
func GetValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(contextKey[T]{}).(T)
	return val, ok
}
