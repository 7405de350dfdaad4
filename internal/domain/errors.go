package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrEmptyText           = errors.New("empty text")
	ErrWordLimitExceeded   = errors.New("word limit exceeded")
	ErrDailyLimitExhausted = errors.New("daily limit exhausted")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrRateLimited         = errors.New("rate limited")
	ErrProviderFailure     = errors.New("provider failure")
	ErrUnparsableOutput    = errors.New("unparsable model output")
)
