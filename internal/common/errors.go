// Package common defines shared sentinel errors and small helpers used across
// the storefront state layer and its CLI. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Account directory errors.
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")

	// Session errors.
	ErrUnauthorized = errors.New("not logged in")

	// Validation errors.
	ErrInvalidInput = errors.New("invalid input")

	// Cart / checkout errors.
	ErrEmptyCart      = errors.New("cart is empty")
	ErrUnknownProduct = errors.New("unknown product")

	// Persistence errors. Matched by storage.ParseError.
	ErrStorageCorrupted = errors.New("storage corrupted")
)
