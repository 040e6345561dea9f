package domain

import "errors"

var (
	ErrAccountNotFound = errors.New("target account not found")
	ErrNoActiveTask    = errors.New("no active task for agent")
	ErrConflict        = errors.New("item already dispensed concurrently")
	ErrUnknownAPIKey   = errors.New("unknown api key")
)
