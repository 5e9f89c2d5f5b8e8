package service

import "errors"

var (
	ErrFormNotFound    = errors.New("form not found")
	ErrForbidden       = errors.New("form belongs to another user")
	ErrFormClosed      = errors.New("form is not accepting responses")
	ErrInvalidForm     = errors.New("invalid form")
	ErrInvalidResponse = errors.New("invalid response")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidSignup   = errors.New("name, email and a password of at least 8 characters are required")
)
