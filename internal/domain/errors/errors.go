package errors

import "errors"

var (
	ErrCrewNotFound     = errors.New("crew member not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidStrategy  = errors.New("unknown ranking strategy")
	ErrSwapConflict     = errors.New("swap conflicts with current duty states")
	ErrStoreUnavailable = errors.New("duty store unavailable")
)
