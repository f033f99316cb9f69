package jwt

import "errors"

var (
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrInvalidToken     = errors.New("token is invalid")
	ErrMissingSecret    = errors.New("jwt secret is not configured")
)
