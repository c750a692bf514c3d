package session

import "errors"

var (
	// ErrSessionExpired is returned without contacting the server once a
	// refresh has failed in the current session.
	ErrSessionExpired = errors.New("session expired: log in again")

	// ErrRefreshFailed describes a refresh call that did not renew the credential.
	ErrRefreshFailed = errors.New("session refresh failed")
)
