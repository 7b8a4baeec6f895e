package castlegate

import (
	"context"

	"github.com/goliatone/go-errors"
)

// SessionManager issues and revokes per-agent session tokens for verified
// accounts.
type SessionManager struct {
	store  AccountStore
	codec  TokenCodec
	logger Logger
}

func NewSessionManager(store AccountStore, codec TokenCodec) *SessionManager {
	return &SessionManager{
		store:  store,
		codec:  codec,
		logger: defLogger{},
	}
}

func (m *SessionManager) WithLogger(l Logger) *SessionManager {
	m.logger = l
	return m
}

// Issue signs a new token for account and records it as the single session
// for agent, replacing whatever session that agent had. The replaced token
// stops resolving at the gate as soon as the save lands.
func (m *SessionManager) Issue(ctx context.Context, account *Account, agent string, updateLastAccess bool) (string, error) {
	token, err := m.codec.Issue(account.ID.String())
	if err != nil {
		return "", err
	}

	account.PutSession(token, agent)

	if updateLastAccess {
		account.TouchAccess()
	}

	if _, err := m.store.Save(ctx, account); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to persist issued session")
	}

	return token, nil
}

// Revoke drops the session entry holding token and persists the account.
// Revoking a token that is not present is a no-op, not an error.
func (m *SessionManager) Revoke(ctx context.Context, account *Account, token string) error {
	if !account.DropSessionToken(token) {
		m.logger.Debug("revoke for absent token: %s", account.ID)
	}

	if _, err := m.store.Save(ctx, account); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist session revocation")
	}

	return nil
}
