package castlegate

import (
	"context"

	"github.com/goliatone/go-router"
)

var accountCtxKey = &contextKey{"account"}
var tokenCtxKey = &contextKey{"token"}

type contextKey struct {
	name string
}

// WithAccount sets the resolved Account in the given context
func WithAccount(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, accountCtxKey, account)
}

// AccountFromContext finds the account the gate attached.
func AccountFromContext(ctx context.Context) (*Account, bool) {
	raw, ok := ctx.Value(accountCtxKey).(*Account)
	return raw, ok
}

// WithToken sets the presented bearer token in the given context
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey, token)
}

// TokenFromContext finds the bearer token the gate attached.
func TokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(tokenCtxKey).(string)
	return raw, ok
}

// AccountFromRouter extracts the account from the router context locals,
// falling back to the standard context.
func AccountFromRouter(ctx router.Context, key string) (*Account, bool) {
	if key == "" {
		key = "account"
	}
	if raw := ctx.Locals(key); raw != nil {
		if account, ok := raw.(*Account); ok {
			return account, true
		}
	}
	return AccountFromContext(ctx.Context())
}
