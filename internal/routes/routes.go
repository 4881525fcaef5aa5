// Package routes classifies request paths for the edge gate: locale
// splitting, exclusion matching, and a closed route-class variant.
//
// Everything here is a pure function of the path. The gate computes the
// classification exactly once per request; no other code is allowed to
// re-derive route classes from prefix checks.
package routes

import (
	"net/url"
	"strings"
)

// Class is the closed set of route classes the gate decides over.
type Class int

const (
	// Public routes pass through the gate regardless of session state.
	Public Class = iota
	// AuthOnly routes (login, register, password recovery) are only
	// meaningful without a session.
	AuthOnly
	// Protected routes require a verified session.
	Protected
)

func (c Class) String() string {
	switch c {
	case AuthOnly:
		return "auth-only"
	case Protected:
		return "protected"
	default:
		return "public"
	}
}

// Excluded reports whether the path is outside the gate's jurisdiction:
// API routes, framework-internal assets, and anything that looks like a
// file (last segment contains a dot).
func Excluded(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if matchPrefix(path, p) {
			return true
		}
	}
	last := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		last = path[i+1:]
	}
	return strings.ContainsRune(last, '.')
}

// SplitLocale inspects the first path segment. When it names a supported
// locale the locale and the remaining logical path are returned with
// ok=true; the logical path is never empty (bare "/{locale}" yields "/").
// Any other first segment, including a malformed locale with trailing
// garbage, reports ok=false and leaves the path untouched.
func SplitLocale(path string, locales []string) (locale, logical string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/")
	seg, rest, found := strings.Cut(trimmed, "/")
	for _, l := range locales {
		if seg == l {
			if !found || rest == "" {
				return l, "/", true
			}
			return l, "/" + rest, true
		}
	}
	return "", path, false
}

// Classify maps a locale-stripped logical path onto the closed class set.
// Matching is segment-aware: "/loginx" is not an auth route.
func Classify(logical string, authOnly, protected []string) Class {
	for _, p := range authOnly {
		if matchPrefix(logical, p) {
			return AuthOnly
		}
	}
	for _, p := range protected {
		if matchPrefix(logical, p) {
			return Protected
		}
	}
	return Public
}

// LocalePrefix prepends the locale segment to a logical path.
func LocalePrefix(locale, logical string) string {
	if logical == "/" {
		return "/" + locale
	}
	return "/" + locale + logical
}

// LoginTarget builds the locale-prefixed login URL carrying the original
// destination in the redirect query parameter.
func LoginTarget(locale, loginPath, destination string) string {
	v := url.Values{}
	v.Set("redirect", destination)
	return LocalePrefix(locale, loginPath) + "?" + v.Encode()
}

func matchPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
