package cli

import (
	"errors"

	"github.com/dmitrijs2005/accessflow/internal/common"
)

// UserMessage turns an error into the line shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrStorageCorrupted):
		return "Stored data is corrupted (" + err.Error() + "). Run 'storefront reset' to start over."
	case errors.Is(err, common.ErrDuplicateEmail):
		return "An account with this email already exists."
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, common.ErrUnauthorized):
		return "Please log in first."
	case errors.Is(err, common.ErrNotFound):
		return "Your account no longer exists. Please log out."
	case errors.Is(err, common.ErrEmptyCart):
		return "Your cart is empty."
	default:
		return "Error: " + err.Error()
	}
}
