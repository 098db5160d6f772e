// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Market data errors.
	ErrMarketDataUnavailable = errors.New("market data unavailable")
	ErrMalformedRecord       = errors.New("malformed record")

	// Decision function errors.
	ErrUnparsableResponse = errors.New("unparsable oracle response")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)
