package service

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrInvalidInput           = errors.New("invalid input")
	ErrConflict               = errors.New("conflict")
	ErrUnresolvedParties      = errors.New("cannot resolve contracting parties")
	ErrPartyUndetermined      = errors.New("cannot determine approving party")
	ErrMissingRelatedProposal = errors.New("no related proposal on contract log")
)
