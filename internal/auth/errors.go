package auth

import "errors"

var (
	// ErrUnauthorized means the request carried no valid bearer token.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrForbidden means the token role ranks below the route's role.
	ErrForbidden = errors.New("auth: forbidden")
	// ErrInvalidToken is returned by ParseJWT for any rejected token.
	ErrInvalidToken = errors.New("auth: invalid token")
)
