package dispatch

import "fmt"

// echoClient is a minimal TdClient used by this package's tests: it
// answers every Submit with the request's own payload, synchronously,
// and acknowledges Stop by firing the Callback's terminal sentinel.
// Real collaborators are free to do all of this from other goroutines —
// Worker routes every Callback invocation back onto its own goroutine
// regardless of the caller — but a synchronous mock keeps ordering
// assertions simple to write.
type echoClient struct {
	cb Callback
}

func newEchoClient(cb Callback) TdClient {
	return &echoClient{cb: cb}
}

func (c *echoClient) Submit(requestID RequestID, req Request) error {
	c.cb.OnResult(requestID, req.Function)
	return nil
}

func (c *echoClient) Execute(req Request) (any, error) {
	return req.Function, nil
}

func (c *echoClient) Stop() {
	c.cb.Close()
}

// failingClient rejects every Submit, used to exercise the Err response
// path distinct from the dispatcher-level invalid-client 400.
type failingClient struct {
	cb Callback
}

func newFailingClient(cb Callback) TdClient {
	return &failingClient{cb: cb}
}

func (c *failingClient) Submit(requestID RequestID, req Request) error {
	c.cb.OnError(requestID, fmt.Errorf("boom"))
	return nil
}

func (c *failingClient) Execute(req Request) (any, error) {
	return nil, fmt.Errorf("boom")
}

func (c *failingClient) Stop() {
	c.cb.Close()
}
