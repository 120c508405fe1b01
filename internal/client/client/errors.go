package client

import "errors"

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidPIN    = errors.New("PIN must be exactly 4 digits")
	ErrMisconfigured = errors.New("PIN is misconfigured for this account")
)
