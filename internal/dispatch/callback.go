package dispatch

// Callback is the capability handle a Session uses to report results
// back into the Dispatcher's shared output queue, per spec §6/§9. It
// replaces the source's "null object means termination" convention with
// the cleaner tagged-variant model spec §9 recommends: termination is
// signaled by calling Close, not by passing a nil Object to OnResult.
type Callback interface {
	// OnResult delivers a successful response for requestID.
	OnResult(requestID RequestID, payload any)
	// OnError delivers an application-level error for requestID.
	OnError(requestID RequestID, err error)
	// Close is invoked exactly once, after all earlier results for this
	// client have been delivered, and is the sole source of the
	// (clientID, 0, nil) termination sentinel.
	Close()
}

// TdClient is the out-of-scope collaborator's contract: the only
// capability a Session needs from the contained client instance. The
// actual protocol parsing and business logic behind this interface is
// explicitly out of scope (spec §1) — callers supply their own
// implementation, or the demo binary's mock in internal/tdclient.
type TdClient interface {
	// Submit enqueues req for asynchronous processing, tagged with
	// requestID so the eventual callback invocation can be correlated
	// back to the caller. Submit itself must not block; an error return
	// means the request was rejected before any callback will fire for
	// it.
	Submit(requestID RequestID, req Request) error
	// Execute runs a request that needs no client/session context,
	// synchronously, and returns its result or error directly.
	Execute(req Request) (any, error)
	// Stop tells the client instance to finish outstanding work and
	// invoke its Callback's Close exactly once.
	Stop()
}

// callbackFunc adapts three plain functions into a Callback, used by
// Session to wire a client's output back into the Dispatcher without
// requiring every TdClient implementation to also implement Callback
// plumbing itself.
type callbackFunc struct {
	onResult func(RequestID, any)
	onError  func(RequestID, error)
	onClose  func()
}

func (c callbackFunc) OnResult(requestID RequestID, payload any) { c.onResult(requestID, payload) }
func (c callbackFunc) OnError(requestID RequestID, err error)    { c.onError(requestID, err) }
func (c callbackFunc) Close()                                    { c.onClose() }
