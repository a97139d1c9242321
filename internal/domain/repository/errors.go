package repository

import "errors"

var (
	ErrNotFound                  = errors.New("record not found")
	ErrEmailTaken                = errors.New("email already registered")
	ErrCapacityReached           = errors.New("event capacity reached")
	ErrDuplicateParticipant      = errors.New("participant already present")
	ErrCapacityBelowParticipants = errors.New("max participants below current participants")
)
