package service

import "errors"

var (
	// ErrCheckDisabled is returned when a check is requested without an account address or route.
	ErrCheckDisabled = errors.New("gas sufficiency check disabled: account address or route missing")
	// ErrChainNotFound is returned when a chain id is not known to the registry.
	ErrChainNotFound = errors.New("chain not found")
)
