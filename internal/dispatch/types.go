// Package dispatch implements the Client Dispatch Layer: a multi-tenant
// request/response fan-out that hosts many logically independent client
// sessions, multiplexes outbound calls onto a pool of worker
// schedulers, and collects inbound results into a single
// consumer-facing queue.
package dispatch

// ClientID identifies a live client session. It is positive,
// monotonically increasing, and allocated by the Dispatcher — never by
// the caller.
type ClientID uint32

// RequestID is caller-chosen and unique within a single client's
// lifetime. 0 is reserved: it marks the termination sentinel and any
// ambient update notification a Session pushes unsolicited.
type RequestID uint64

// Request is an opaque call into the contained Td collaborator: a
// function payload plus the caller-chosen RequestID that will be
// echoed back in the Response.
type Request struct {
	Function any
}

// Result wraps a successful response payload.
type Result struct {
	Payload any
}

// Err wraps an application- or dispatch-level error response. Code 400
// is reserved for "invalid client" synthesized by Send; all other codes
// are whatever the contained Td collaborator reports.
type Err struct {
	Code    int
	Message string
}

func (e Err) Error() string { return e.Message }

// Response is what Receive hands back: a tagged union over Object,
// which is one of Result, Err, or nil (the per-client termination
// sentinel, recognized by RequestID==0 together with Object==nil).
// ClientID==0 denotes the distinguished "no data available" poll result
// that Receive returns on an idle queue or on timeout.
type Response struct {
	ClientID  ClientID
	RequestID RequestID
	Object    any
}

// IsSentinel reports whether r is the per-client termination response.
func (r Response) IsSentinel() bool {
	return r.RequestID == 0 && r.Object == nil && r.ClientID != 0
}

// IsEmpty reports whether r is the distinguished empty poll result
// Receive returns when no response was available within the timeout.
func (r Response) IsEmpty() bool {
	return r.ClientID == 0
}
