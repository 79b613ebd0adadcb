// Package service implements the user directory, movie catalog and booking
// ledger on top of an in-memory repository.Dataset.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUsernameTaken is wrapped in a ValidationError when registering with
	// an existing username.
	ErrUsernameTaken = errors.New("the username is not available")
	// ErrInvalidGenre is wrapped in a ValidationError when the preferred
	// genre is not one of model.Genres.
	ErrInvalidGenre = errors.New("invalid genre")
	// ErrInvalidCredentials is returned for any failed login. It does not
	// tell whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrUserNotFound is returned when an operation names a user record
	// that is no longer in the directory.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoShowtimes means the movie has no showtime at all.
	ErrNoShowtimes = errors.New("there is no showtime for selected movie")
	// ErrNoAvailableShowtimes means showtimes exist but every one is sold out.
	ErrNoAvailableShowtimes = errors.New("no available showtimes for the specified movie")
	// ErrBookingUnavailable is returned when the showtime is unknown or has
	// no seats left. No state is changed.
	ErrBookingUnavailable = errors.New("the showtime is not available for booking")
)

// ValidationError reports bad registration input. Callers recover by
// asking again.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }
func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
