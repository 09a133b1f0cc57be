package dispatch

import (
	"sync"
	"time"
)

var (
	sharedMu   sync.Mutex
	shared     *Dispatcher
	sharedRefs int
)

// Client is the external-client single-session variant from spec
// §4.3/§9: it owns exactly one ClientID hosted on a process-wide,
// lazily-initialized, reference-counted shared Pool, with its own
// private response queue so independent Client callers never contend
// over a single reader.
type Client struct {
	id  ClientID
	d   *Dispatcher
	out *outputQueue
}

// NewClient creates one external client against the shared pool,
// materializing it on first use. factory is only consulted the first
// time the shared pool is built; later callers' factory arguments are
// ignored and the pool's original collaborator keeps being used — the
// same "fix it at first allocation" rule spec §9 applies to pool sizing.
func NewClient(factory ClientFactory) *Client {
	sharedMu.Lock()
	if shared == nil {
		shared = New(factory)
	}
	sharedRefs++
	sharedMu.Unlock()

	out := newOutputQueue(256)
	id := shared.createClientWithOutput(out)
	return &Client{id: id, d: shared, out: out}
}

// Send enqueues req under requestID for this client.
func (c *Client) Send(requestID RequestID, req Request) {
	c.d.Send(c.id, requestID, req)
}

// Receive waits up to timeout for this client's next Response.
func (c *Client) Receive(timeout time.Duration) Response {
	r, ok := c.out.waitBlocking(timeout)
	if !ok {
		return Response{}
	}
	return r
}

// Close asks this client's session to terminate, blocks until its
// termination sentinel arrives, then releases this Client's reference
// on the shared pool — tearing the pool down once the last reference is
// gone.
func (c *Client) Close() {
	c.d.mu.RLock()
	worker, ok := c.d.bindings[c.id]
	c.d.mu.RUnlock()

	if ok {
		worker.closeReq <- closeMsg{id: c.id}
		for {
			r, ok := c.out.waitBlocking(5 * time.Second)
			if !ok {
				continue
			}
			if r.IsSentinel() {
				break
			}
		}
		c.d.mu.Lock()
		delete(c.d.bindings, c.id)
		c.d.mu.Unlock()
	}

	ReleaseSharedPool()
}

// ReleaseSharedPool drops one reference on the process-wide shared
// pool, tearing it down once the last Client has released it. Client.Close
// calls it, so the pool is torn down deterministically instead of at
// process exit.
func ReleaseSharedPool() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		return
	}
	sharedRefs--
	if sharedRefs <= 0 {
		shared.ensurePool().close()
		shared = nil
		sharedRefs = 0
	}
}
