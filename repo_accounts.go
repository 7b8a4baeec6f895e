package castlegate

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SaveAccountSQL updates every mutable column in one statement. The ORM
// update path skips zero values, which silently loses enabled=false and
// bad_password_count=0, so the full save goes through raw SQL.
var SaveAccountSQL = `UPDATE "accounts" AS "acc"
SET
	"email" = ?,
	"password_hash" = ?,
	"sessions" = ?,
	"enabled" = ?,
	"is_email_confirmed" = ?,
	"bad_password_count" = ?,
	"last_access_at" = ?,
	"updated_at" = ?
WHERE
	"acc"."id" = ?
RETURNING *;`

type Accounts interface {
	repository.Repository[*Account]

	Register(ctx context.Context, account *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetBySessionToken(ctx context.Context, id uuid.UUID, token string) (*Account, error)
	Save(ctx context.Context, account *Account) (*Account, error)
	SaveTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
	_ AccountStore                    = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) Register(ctx context.Context, account *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, account)
}

func (a *accounts) RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	prepareAccountDefaults(account)

	created, err := a.Repository.CreateTx(ctx, tx, account)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return created, nil
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *accounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isEmptyResult(err) {
			return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{
				"email": email,
			})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	record := &Account{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isEmptyResult(err) {
			return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{
				"id": id.String(),
			})
		}
		return nil, err
	}

	return record, nil
}

// GetBySessionToken resolves the account only when token is still a member
// of its session set. A structurally valid token that was revoked or
// replaced resolves to nothing.
func (a *accounts) GetBySessionToken(ctx context.Context, id uuid.UUID, token string) (*Account, error) {
	record, err := a.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !record.HasSessionToken(token) {
		return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{
			"id": id.String(),
		})
	}

	return record, nil
}

func (a *accounts) Save(ctx context.Context, account *Account) (*Account, error) {
	return a.SaveTx(ctx, a.db, account)
}

func (a *accounts) SaveTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	sessions, err := json.Marshal(account.Sessions)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode session set")
	}

	now := time.Now()
	account.UpdatedAt = &now

	res, err := a.Repository.RawTx(ctx, tx, SaveAccountSQL,
		account.Email,
		account.PasswordHash,
		string(sessions),
		account.Enabled,
		account.EmailConfirmed,
		account.BadPasswordCount,
		account.LastAccessAt,
		account.UpdatedAt,
		account.ID.String(),
	)

	if err != nil {
		return nil, mapStoreError(err)
	}

	if len(res) == 0 {
		return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{
			"id": account.ID.String(),
		})
	}

	return res[0], nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	// email and password are both set at creation, which counts as an edit
	now := time.Now()
	record.UpdatedAt = &now
}

func isEmptyResult(err error) bool {
	return repository.IsRecordNotFound(err) ||
		strings.Contains(err.Error(), "no rows in result set")
}

// mapStoreError translates driver level failures into the typed errors the
// core's callers switch on.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()

	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "duplicate key value"),
		strings.Contains(msg, "23505"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "NOT NULL constraint failed"),
		strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "23502"):
		return ErrValidationFailed.Clone().WithMetadata(map[string]any{
			"cause": msg,
		})
	}

	return errors.Wrap(err, errors.CategoryInternal, "account store operation failed")
}
