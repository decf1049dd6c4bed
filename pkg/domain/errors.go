package domain

import "errors"

// ErrUnknownScreen is returned when a screen ID is not present in the registry.
// Seen at startup it means the graph is invalid; seen at runtime it means a
// persisted session points at a screen that no longer exists.
var ErrUnknownScreen = errors.New("unknown screen")

// ErrIllegalAction is returned when an action is not advertised by the current screen.
var ErrIllegalAction = errors.New("illegal action")

// ErrEmptyInput is returned when a free-text submission is blank.
var ErrEmptyInput = errors.New("empty input")

// ErrContentUnavailable is returned when a content reference cannot be resolved.
var ErrContentUnavailable = errors.New("content unavailable")

// ErrSessionNotFound is returned when a user has no stored session.
var ErrSessionNotFound = errors.New("session not found")

// ErrRateLimited is returned when a user exceeds the free-text submission budget.
var ErrRateLimited = errors.New("rate limited")
