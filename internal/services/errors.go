package services

import "errors"

var (
	ErrInvalidParticipant  = errors.New("invalid participant")
	ErrUnknownParticipant  = errors.New("participant not registered")
	ErrAlreadyParticipated = errors.New("participant has already drawn")
	ErrNoSession           = errors.New("no active session")
	ErrInvalidPrize        = errors.New("invalid prize")
)
