package castlegate

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterAccountMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// UseHashid derives the account ID deterministically from the email
	// instead of a random UUID.
	UseHashid bool
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

type RegisterAccountHandler struct {
	repo RepositoryManager
	// manualEnabling makes new accounts start disabled until an external
	// administrative action flips them on.
	manualEnabling bool
}

func NewRegisterAccountHandler(repo RepositoryManager, cfg *Config) *RegisterAccountHandler {
	manual := false
	if cfg != nil {
		manual = cfg.ManualEnabling
	}
	return &RegisterAccountHandler{
		repo:           repo,
		manualEnabling: manual,
	}
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		_, err := h.Register(ctx, event)
		return err
	}
}

// Register creates the account with a hashed password and returns the stored
// record. Store uniqueness violations surface as ErrDuplicateEmail.
func (h *RegisterAccountHandler) Register(ctx context.Context, event RegisterAccountMessage) (*Account, error) {
	account := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := SetPassword(account, event.Password); err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		account.Email = event.Email
		account.Enabled = !h.manualEnabling
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				account.ID = id
			}
		}

		var err error
		if account, err = h.repo.Accounts().RegisterTx(ctx, tx, account); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	return account, nil
}
