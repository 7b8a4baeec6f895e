package castlegate

import (
	"context"

	"github.com/castlegate/castlegate/middleware/gateware"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// HeaderAuthToken carries the bearer token on both requests and issuance
// responses.
const HeaderAuthToken = "x-auth"

// AuthID is how the account presents itself to the gate.
func (a *Account) AuthID() string {
	return a.ID.String()
}

func (a *Account) IsEnabled() bool {
	return a.Enabled
}

var _ gateware.Identity = (*Account)(nil)

// AccessGate builds the middleware that fronts identity-requiring routes,
// wiring the token codec and the stateful session lookup into gateware.
func AccessGate(store AccountStore, codec TokenCodec) router.MiddlewareFunc {
	return gateware.New(gateware.Config{
		Verifier: codec,
		Resolver: sessionResolverAdapter{store: store},
		ErrorHandler: func(c router.Context, err error) error {
			return WriteError(c, err)
		},
		ContextEnricher: func(ctx context.Context, identity gateware.Identity, token string) context.Context {
			if account, ok := identity.(*Account); ok {
				ctx = WithAccount(ctx, account)
			}
			return WithToken(ctx, token)
		},
	})
}

type sessionResolverAdapter struct {
	store AccountStore
}

func (r sessionResolverAdapter) ResolveSession(ctx context.Context, subjectID, token string) (gateware.Identity, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		// a token whose subject is not one of our IDs resolves to nothing
		return nil, ErrAccountNotFound
	}

	account, err := r.store.GetBySessionToken(ctx, id, token)
	if err != nil {
		return nil, err
	}

	return account, nil
}

// WriteError serializes any failure into the `{errorCode, data}` payload
// with its mapped status. Unrecognized errors collapse to GENERIC_ERROR.
func WriteError(ctx router.Context, err error) error {
	code := ErrorCode(err)
	return ctx.JSON(ErrorStatus(code), ErrorPayload(err))
}

// TokenFromRouter extracts the presented bearer token the gate stored in
// the router context locals, falling back to the standard context.
func TokenFromRouter(ctx router.Context, key string) (string, bool) {
	if key == "" {
		key = "token"
	}
	if raw := ctx.Locals(key); raw != nil {
		if token, ok := raw.(string); ok {
			return token, true
		}
	}
	return TokenFromContext(ctx.Context())
}
