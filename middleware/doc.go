// Package middleware provides the edge request gate and a session guard
// for net/http handler chains.
//
// Gate runs ahead of all page logic: it resolves the request locale,
// classifies the route, resolves the session through the engine, and
// either forwards the request unchanged or answers with a same-origin
// redirect. It never mutates the session and produces no other response
// shape.
//
// The gate does not hand a validated principal to downstream handlers;
// each layer re-verifies through the engine. RequireSession is the
// explicit opt-in for handlers that want the principal in their request
// context.
package middleware
