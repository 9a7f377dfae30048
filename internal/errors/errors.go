package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard and token exchange proxy
var (
	// Authentication errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAuthentication  = errors.New("could not authenticate with GitHub")
	ErrInvalidState    = errors.New("invalid state parameter")

	// Token errors
	ErrTokenMissing        = errors.New("token missing")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Query errors
	ErrGraphQL = errors.New("graphql error")

	// Proxy errors
	ErrUpstream       = errors.New("upstream provider error")
	ErrInvalidRequest = errors.New("invalid request")

	// Persisted state errors
	ErrInvalidSelector = errors.New("invalid repository selector")
	ErrMalformedState  = errors.New("malformed persisted state")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
