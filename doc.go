// Package sessiongate implements the session-token lifecycle for a
// server-rendered, locale-prefixed web application: a signed stateless
// cookie token carrying the authenticated principal, and the edge gate
// policy that consumes the token before any page logic runs.
//
// The package is the public surface. It exposes [Engine], [Builder],
// [Config], and the [Principal] value type. The raw token codec lives
// under token, the HTTP gate under middleware, the optional revocation
// denylist under revoke, and route classification under internal/routes.
//
// # Trust model
//
// The session cookie is untrusted input on every request. All verification
// flows through a single choke point inside Engine; a token that is
// missing, expired, malformed, signed with the wrong secret, or revoked
// yields the same observable outcome for callers: no session. The
// distinction between those causes exists only in metrics and audit
// events, never in return values.
//
// # Concurrency
//
// Engine is immutable after [Builder.Build] and safe for concurrent use.
// Verification is pure local computation; the only optional I/O on the
// verify path is the revocation lookup, which fails closed.
package sessiongate
