package locale

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the resolved locale.
func NewContext(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, ctxKey{}, code)
}

// FromContext returns the locale stored by NewContext.
func FromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(ctxKey{}).(string)
	return code, ok && code != ""
}
