package entity

import "errors"

var (
	// ErrCredentialFailure is returned when the auth endpoint rejects the login
	ErrCredentialFailure = errors.New("credential failure")

	// ErrIdentityFailure is returned when the profile endpoint cannot resolve the employee id
	ErrIdentityFailure = errors.New("identity failure")

	// ErrCalendarUnavailable is returned when today's calendar record cannot be read
	ErrCalendarUnavailable = errors.New("calendar unavailable")

	// ErrPunchStateUnavailable is returned on an unexpected raw-punch response
	ErrPunchStateUnavailable = errors.New("punch state unavailable")

	// ErrPunchRejected is returned when the vendor refuses the punch submission
	ErrPunchRejected = errors.New("punch rejected")

	// ErrAccountNotFound is returned by repositories for unknown account ids
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned when a username is registered twice
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrTickInProgress is returned when a tick is requested while another one runs
	ErrTickInProgress = errors.New("tick already in progress")
)
