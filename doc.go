// Package castlegate implements the credential and token-lifecycle engine
// behind a small account service: bcrypt password hashing, signed bearer
// tokens, per-agent session tracking, failed-login lockout, and the request
// gate that enforces all of it.
//
// Session model:
//   - An Account carries its session entries inline (token + client agent),
//     at most one per agent. Issuing a token for an agent replaces that
//     agent's previous entry, so the old token stops resolving immediately.
//   - The access gate requires both a valid signature and membership in the
//     account's session set. Sign-out removes the entry, which is what makes
//     revocation effective without a denylist.
//
// Lockout:
//   - Consecutive failed password checks against an enabled account bump a
//     counter; crossing the configured limit disables the account. The
//     crossing attempt still reports a plain login failure, the next one
//     reports the disabled state. Re-enabling is an administrative action,
//     never automatic.
package castlegate
