package service

import "errors"

var (
	// ErrNotFound indicates a contract or user id absent from the collection.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a rejected mutation due to bad or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition indicates a status change not allowed from the
	// current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrForbidden indicates the actor's role may not perform the action.
	ErrForbidden = errors.New("forbidden")
)
