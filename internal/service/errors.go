package service

import "errors"

var (
	// ErrInvalidAmount is returned for a missing, non-numeric or non-positive amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidTimestamp is returned when a timestamp is not ISO-8601.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
