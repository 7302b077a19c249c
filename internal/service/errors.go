package service

import "errors"

// Domain Errors
var (
	ErrInvalidClass     = errors.New("invalid class definition")
	ErrClassNotFound    = errors.New("class not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrInvalidDate      = errors.New("participation date must be in the future")
	ErrOutOfRange       = errors.New("participation date must be within the class date range")
	ErrNoInstance       = errors.New("no class instance found for date")
	ErrCapacityExceeded = errors.New("class is full")
)
