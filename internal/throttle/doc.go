// Package throttle provides the Redis-backed failed-login budget.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on the first hit. Key
// layout:
//   - <prefix>:throttle:acct:<email> — per-account failures
//   - <prefix>:throttle:ip:<ip>      — per-source failures
//
// Counters track failures only. A successful sign-in resets the account
// counter so a legitimate user never inherits stale budget.
package throttle
