// Package session owns the client's authentication state: acquiring a
// token, restoring it from local storage at startup, scheduling its
// expiration, and revoking it on logout. It also provides the access
// guard that turns (session state, route requirement) into a navigation
// decision.
//
// Token claims are decoded without signature verification. That is enough
// for UI gating (which view to render) but it is not a security
// boundary: the backend verifies the signature on every API call.
package session
