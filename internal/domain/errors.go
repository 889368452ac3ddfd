package domain

import "errors"

// Sentinel errors for use with errors.Is(). Services wrap these with
// fmt.Errorf("%w") and the HTTP layer maps them to status codes in one place.
var (
	ErrUnauthenticated    = errors.New("you are not logged in")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidResetToken  = errors.New("token is invalid or has expired")
	ErrEmailDelivery      = errors.New("there was an error sending the email")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrValidation         = errors.New("validation failed")
)
