package service

import "errors"

var (
	// ErrNotFound covers both missing records and records owned by someone
	// else, so responses do not leak which sessions exist.
	ErrNotFound = errors.New("resource not found")

	ErrValidation   = errors.New("invalid request")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrConflict     = errors.New("resource already exists")
)
