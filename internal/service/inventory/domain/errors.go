package domain

import "errors"

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrActivityExists   = errors.New("activity already exists")
	ErrInvalidActivity  = errors.New("invalid activity")
)
