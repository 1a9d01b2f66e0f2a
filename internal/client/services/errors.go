package services

import (
	"errors"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/client"
)

var (
	// ErrSuperseded is returned by a login whose result was discarded
	// because a newer login or a logout happened meanwhile.
	ErrSuperseded = errors.New("superseded by a newer session change")

	// ErrPasswordChangeUnsupported is returned for a valid password change
	// request: the backend offers no endpoint for it.
	ErrPasswordChangeUnsupported = errors.New("password change is not supported by the server")
)

const sessionExpiredMessage = "session expired, please log in again"

// describe turns err into the message stored in a store's Err field: the
// server's detail when it sent one, the validation reason for client-side
// rejections, fallback otherwise.
func describe(err error, fallback string) string {
	if d := client.Detail(err); d != "" {
		return d
	}
	var ve *client.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return fallback
}

// describeAuthed is describe for operations that need a live session: a
// rejected token always asks the user to log in again, after the server's
// detail when there is one.
func describeAuthed(err error, fallback string) string {
	if !errors.Is(err, client.ErrUnauthorized) {
		return describe(err, fallback)
	}
	if d := client.Detail(err); d != "" {
		return d + "; " + sessionExpiredMessage
	}
	return sessionExpiredMessage
}
