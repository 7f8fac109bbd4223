package domain

import "errors"

// Store errors shared by every repository backend
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrChannelNotFound = errors.New("channel not found")
	ErrDuplicateUser   = errors.New("user with same email or username already exists")
)
