package castlegate

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SessionEntry pairs an issued token with the client agent it was issued for.
type SessionEntry struct {
	Token string `json:"token"`
	Agent string `json:"agent"`
}

// Account is the persisted account record. Sessions live inline as a JSON
// column so Save stays a single atomic row update, and so replacing or
// revoking a session can never leave a half-written set behind.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID               uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email            string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash     string         `bun:"password_hash,notnull" json:"-"`
	Sessions         []SessionEntry `bun:"sessions,type:jsonb" json:"-"`
	Enabled          bool           `bun:"enabled" json:"enabled"`
	EmailConfirmed   bool           `bun:"is_email_confirmed" json:"is_email_confirmed"`
	BadPasswordCount int            `bun:"bad_password_count" json:"bad_password_count"`
	CreatedAt        *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time     `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
	LastAccessAt     *time.Time     `bun:"last_access_at,nullzero" json:"last_access_at,omitempty"`
}

// PutSession appends a session entry for agent, dropping any existing entry
// for the same agent first. At most one session per agent survives.
func (a *Account) PutSession(token, agent string) {
	kept := a.Sessions[:0]
	for _, s := range a.Sessions {
		if s.Agent != agent {
			kept = append(kept, s)
		}
	}
	a.Sessions = append(kept, SessionEntry{Token: token, Agent: agent})
}

// DropSessionToken removes the entry matching token. Removing an absent
// token is a no-op and reports false.
func (a *Account) DropSessionToken(token string) bool {
	kept := a.Sessions[:0]
	dropped := false
	for _, s := range a.Sessions {
		if s.Token == token {
			dropped = true
			continue
		}
		kept = append(kept, s)
	}
	a.Sessions = kept
	return dropped
}

// HasSessionToken reports whether token is still in the session set.
func (a *Account) HasSessionToken(token string) bool {
	for _, s := range a.Sessions {
		if s.Token == token {
			return true
		}
	}
	return false
}

// SessionForAgent returns the current entry for agent, if any.
func (a *Account) SessionForAgent(agent string) (SessionEntry, bool) {
	for _, s := range a.Sessions {
		if s.Agent == agent {
			return s, true
		}
	}
	return SessionEntry{}, false
}

// TouchAccess bumps the last access timestamp.
func (a *Account) TouchAccess() {
	now := time.Now()
	a.LastAccessAt = &now
}
