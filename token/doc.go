// Package token signs and verifies the compact session token carried in
// the application cookie.
//
// The codec is deliberately narrow: one symmetric algorithm (HS256), one
// claim set, one TTL. Key rotation, asymmetric verification and multi-kid
// key sets are out of scope; the token never crosses a trust boundary
// other than the first-party cookie.
//
// Parse performs full verification: signature, algorithm pinning, expiry,
// optional issuer match, and an upper bound on future iat values. Callers
// must treat any Parse error as "no session" and must not branch on the
// error cause.
package token
