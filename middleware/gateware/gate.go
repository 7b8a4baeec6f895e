// Package gateware provides the request gate that fronts every route
// requiring an established identity. It mirrors the small interfaces it
// needs instead of importing the root package, so the root package can wire
// it without an import cycle.
package gateware

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

const (
	defaultHeaderName = "x-auth"
	defaultContextKey = "account"
	defaultTokenKey   = "token"
)

// Gate outcomes. Expired, malformed, and revoked tokens all collapse into
// NEW_TOKEN_REQUIRED so the response never reveals whether a presented
// token ever carried a valid signature.
var (
	ErrTokenRequired = errors.New("authentication token required", errors.CategoryAuth).
				WithTextCode("TOKEN_REQUIRED").
				WithCode(errors.CodeUnauthorized)

	ErrNewTokenRequired = errors.New("a new authentication token is required", errors.CategoryAuth).
				WithTextCode("NEW_TOKEN_REQUIRED").
				WithCode(errors.CodeUnauthorized)

	ErrDisabledUser = errors.New("user is disabled", errors.CategoryAuthz).
			WithTextCode("DISABLED_USER").
			WithCode(errors.CodeForbidden)
)

// TokenVerifier validates a raw token and returns its subject ID.
// This mirrors the TokenCodec.Verify method from the root package.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// SessionResolver resolves a (subject, token) pair into an identity. The
// token must still be a member of the subject's session set; a merely
// well-signed token that was revoked or replaced resolves to a not-found.
type SessionResolver interface {
	ResolveSession(ctx context.Context, subjectID, token string) (Identity, error)
}

// Identity is the resolved account as far as the gate is concerned.
type Identity interface {
	AuthID() string
	IsEnabled() bool
}

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	// HeaderName is the request header carrying the bearer token.
	HeaderName string
	ContextKey string
	TokenKey   string

	// Verifier is required for token validation
	Verifier TokenVerifier
	// Resolver is required for the stateful session-membership check
	Resolver SessionResolver

	// ContextEnricher propagates the resolved identity and token to the
	// standard Go context after the gate accepts a request.
	ContextEnricher func(c context.Context, identity Identity, token string) context.Context
}

// New builds the gate middleware. Every request passes through exactly one
// of five terminal outcomes: rejected with TokenRequired, NewTokenRequired,
// or DisabledUser, rejected with an unexpected failure, or accepted with
// the identity attached.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw := ctx.Header(cfg.HeaderName)
			if raw == "" {
				return cfg.ErrorHandler(ctx, ErrTokenRequired)
			}

			subject, err := cfg.Verifier.Verify(raw)
			if err != nil {
				// expired and malformed deliberately share one outcome
				return cfg.ErrorHandler(ctx, ErrNewTokenRequired)
			}

			identity, err := cfg.Resolver.ResolveSession(ctx.Context(), subject, raw)
			if err != nil {
				if errors.IsNotFound(err) {
					return cfg.ErrorHandler(ctx, ErrNewTokenRequired)
				}
				return cfg.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "session resolution failed"))
			}

			if !identity.IsEnabled() {
				return cfg.ErrorHandler(ctx, ErrDisabledUser)
			}

			ctx.Locals(cfg.ContextKey, identity)
			ctx.Locals(cfg.TokenKey, raw)

			if cfg.ContextEnricher != nil {
				stdCtx := cfg.ContextEnricher(ctx.Context(), identity, raw)
				ctx.SetContext(stdCtx)
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	if cfg.Verifier == nil {
		panic("GATE: middleware configuration: Verifier is required.")
	}

	if cfg.Resolver == nil {
		panic("GATE: middleware configuration: Resolver is required.")
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = defaultHeaderName
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = defaultContextKey
	}

	if cfg.TokenKey == "" {
		cfg.TokenKey = defaultTokenKey
	}

	return cfg
}

func defaultErrorHandler(c router.Context, err error) error {
	status := router.StatusBadRequest
	code := "GENERIC_ERROR"

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		if richErr.Code > 0 {
			status = richErr.Code
		}
		if richErr.TextCode != "" {
			code = richErr.TextCode
		}
	}

	return c.JSON(status, map[string]any{
		"errorCode": code,
	})
}
