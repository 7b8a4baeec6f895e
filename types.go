package castlegate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenCodec signs and verifies compact bearer tokens carrying a subject ID.
type TokenCodec interface {
	Issue(subjectID string) (string, error)
	Verify(token string) (string, error)
}

// AccountStore is the persistence contract the core needs. The bun
// implementation lives in repo_accounts.go; tests substitute mocks.
type AccountStore interface {
	Register(ctx context.Context, account *Account) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetBySessionToken(ctx context.Context, id uuid.UUID, token string) (*Account, error)
	Save(ctx context.Context, account *Account) (*Account, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] GATE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] GATE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] GATE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] GATE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
