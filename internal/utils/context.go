// Package utils provides general-purpose helper utilities used across
// different parts of the application: type-safe context keys, JSON response
// writing, JWT token validation, and UUID generation.
package utils

import (
	"context"

	"github.com/declanlscott/printdesk-sub002/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// PrincipalCtxKey is the key under which the authentication middleware
// stores the request's [models.Principal].
var PrincipalCtxKey = contextKey("principal")

// WithPrincipal returns a child context carrying the principal.
func WithPrincipal(ctx context.Context, principal models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalCtxKey, principal)
}

// GetPrincipalFromContext retrieves the authenticated principal from the
// context.
//
// Returns the principal and an ok flag:
//   - ok == true  — value is found and has the correct type
//   - ok == false — value is missing or has an unexpected type
func GetPrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	principal, ok := ctx.Value(PrincipalCtxKey).(models.Principal)
	return principal, ok
}
