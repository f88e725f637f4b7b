package marketplace

import (
	"errors"
)

var (
	ErrUnauthorized      = errors.New("caller is not authorized")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrConflict          = errors.New("listing already exists")
	ErrInvalidState      = errors.New("listing is not in a valid state")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
