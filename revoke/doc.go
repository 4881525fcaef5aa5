// Package revoke implements the optional server-side revocation denylist.
//
// The base token design is stateless: a signed token stays valid until
// natural expiry, and logout on one device cannot invalidate cookies held
// by another. Deployments that need cross-device invalidation (password
// change, forced logout) enable this store. It records a per-account
// cut-off instant in Redis; tokens issued at or before the cut-off are
// rejected during verification.
//
// Entries carry a TTL no shorter than the token TTL, so the denylist
// stays bounded: once every token issued before the cut-off has expired
// on its own, the entry is garbage.
package revoke
