// Package password hashes and verifies account passwords with argon2id.
//
// Hashes are stored in PHC string format, so parameters travel with the
// hash and can be raised later without invalidating existing records.
// Verification is constant-time over the derived keys.
package password
