package dispatch

import "errors"

var (
	// errClientClosed is returned by internal submit paths once a
	// session has received Stop but not yet emitted its terminal
	// sentinel. It never crosses the package boundary as a Go error —
	// per spec §7, Send reports invalid/closed clients by synthesizing
	// an Err{Code: 400} Response instead.
	errClientClosed = errors.New("dispatch: client is closing")

	// ErrPoolClosed is returned by Execute/ExecuteContext once Close has
	// been called on the owning Dispatcher.
	ErrPoolClosed = errors.New("dispatch: dispatcher is closed")
)

// errCodeInvalidClient and errMessageInvalid make up the
// application-visible synthesized error for Send calls naming a
// ClientID the Dispatcher has never issued or has already torn down.
const (
	errCodeInvalidClient = 400
	errMessageInvalid    = "Invalid client"
)

func invalidClientResponse(id ClientID, requestID RequestID) Response {
	return Response{
		ClientID:  id,
		RequestID: requestID,
		Object:    Err{Code: errCodeInvalidClient, Message: errMessageInvalid},
	}
}
