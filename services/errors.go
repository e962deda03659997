package services

import "errors"

var (
	ErrRoomNotFound        = errors.New("chat room not found")
	ErrChatNotFound        = errors.New("chat not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDestinationNotFound = errors.New("destination not found")

	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidID          = errors.New("invalid id")
	ErrEmailRequired      = errors.New("user email is required")
	ErrDirectChatMembers  = errors.New("a direct chat needs exactly two members")
	ErrGroupNameRequired  = errors.New("group chat name is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("not allowed to modify this resource")

	// ErrConflict is returned when a room kept changing underneath every
	// attempt of an update.
	ErrConflict = errors.New("chat room is being modified, try again")
)
