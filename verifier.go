package castlegate

import (
	"context"

	"github.com/goliatone/go-errors"
)

// CredentialVerifier resolves an email+password pair into an account,
// maintaining the bad-password counter and the lockout flag along the way.
type CredentialVerifier struct {
	store AccountStore
	// badPasswordLimit of zero disables the lockout counter entirely.
	badPasswordLimit int
	logger           Logger
}

func NewCredentialVerifier(store AccountStore, cfg *Config) *CredentialVerifier {
	limit := 0
	if cfg != nil {
		limit = cfg.BadPasswordLimit
	}
	return &CredentialVerifier{
		store:            store,
		badPasswordLimit: limit,
		logger:           defLogger{},
	}
}

func (v *CredentialVerifier) WithLogger(l Logger) *CredentialVerifier {
	v.logger = l
	return v
}

// Verify checks email+password and returns the account on success.
//
// A missing account and a wrong password both report ErrLoginFailed so the
// response never confirms whether an email is registered. A disabled account
// reports ErrDisabledUser before the password comparison runs; that reveals
// account state, which is the accepted trade-off so locked-out users learn
// why they cannot get in.
//
// On success a non-zero bad-password counter is reset in the returned
// record; persisting the reset rides on the caller's next save, which in
// practice is the session issuance that follows every successful sign-in.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*Account, error) {
	if password == "" {
		return nil, ErrLoginFailed
	}

	account, err := v.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrLoginFailed
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during verification")
	}

	if !account.Enabled {
		return nil, ErrDisabledUser
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err == nil {
		if account.BadPasswordCount > 0 {
			account.BadPasswordCount = 0
		}
		return account, nil
	}

	if v.badPasswordLimit > 0 {
		account.BadPasswordCount++
		if account.BadPasswordCount >= v.badPasswordLimit {
			account.Enabled = false
			v.logger.Warn("account locked out after repeated failures: %s", account.ID)
		}

		if _, err := v.store.Save(ctx, account); err != nil {
			// the attempt still reads as a login failure, but the counter
			// increment is not durable when this save fails
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist login attempt")
		}
	}

	// still LOGIN_FAILED on the attempt that crossed the limit; the caller
	// only sees DISABLED_USER from the next attempt onward
	return nil, ErrLoginFailed
}
