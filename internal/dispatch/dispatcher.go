package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// ClientFactory builds the TdClient collaborator backing a new session.
// The Callback passed in is already wired to route back through that
// session's owning Worker — implementations just need to call its
// methods whenever their own async work completes.
type ClientFactory func(cb Callback) TdClient

const defaultOutQueueSize = 4096

// Dispatcher is the top-level Client Dispatch Layer, spec §3.2/§4.2's
// multi-tenant request/response fan-out realized as described in
// SPEC_FULL §5: a worker Pool sized once on first use, a binding map
// from ClientID to the Worker hosting it, and a shared output queue
// every Receive call drains from.
type Dispatcher struct {
	factory ClientFactory

	poolOnce sync.Once
	pool     *Pool

	mu       sync.RWMutex
	bindings map[ClientID]*Worker
	nextID   uint32

	statelessOnce sync.Once
	stateless     TdClient

	closed int32

	events Publisher

	outQueueSize int
}

// Publisher is the optional lifecycle event sink a Dispatcher notifies
// on client creation, termination, and invalid sends — see
// internal/eventbus and internal/metrics. A nil Publisher (the zero
// value of Dispatcher.events) is a no-op.
type Publisher interface {
	PublishClientCreated(ClientID)
	PublishClientTerminated(ClientID)
	PublishInvalidSend(ClientID)
}

// fanoutPublisher broadcasts every event to a fixed set of Publishers,
// letting a Dispatcher feed both the NATS lifecycle bus and the
// Prometheus counters from one WithEventBus call.
type fanoutPublisher []Publisher

// Publishers combines multiple Publishers into one. Publishers with a
// nil interface value are skipped.
func Publishers(ps ...Publisher) Publisher {
	var out fanoutPublisher
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f fanoutPublisher) PublishClientCreated(id ClientID) {
	for _, p := range f {
		p.PublishClientCreated(id)
	}
}

func (f fanoutPublisher) PublishClientTerminated(id ClientID) {
	for _, p := range f {
		p.PublishClientTerminated(id)
	}
}

func (f fanoutPublisher) PublishInvalidSend(id ClientID) {
	for _, p := range f {
		p.PublishInvalidSend(id)
	}
}

// New builds a Dispatcher. The Pool is not materialized until the first
// call that needs it (CreateClient, Send, Receive, Stats or Close), per
// spec §9's lazy-init rule; Execute never materializes it.
func New(factory ClientFactory) *Dispatcher {
	return &Dispatcher{
		factory:      factory,
		bindings:     make(map[ClientID]*Worker),
		outQueueSize: defaultOutQueueSize,
	}
}

// WithEventBus attaches a lifecycle event Publisher. Safe to call before
// the Dispatcher has created any clients.
func (d *Dispatcher) WithEventBus(p Publisher) *Dispatcher {
	d.events = p
	return d
}

// WithOutputQueueSize overrides the shared output queue's buffer
// capacity. Must be called before the first CreateClient, Send, Receive,
// Stats or Close call; the Pool is sized and its queue allocated lazily
// on first use and never afterward.
func (d *Dispatcher) WithOutputQueueSize(n int) *Dispatcher {
	if n > 0 {
		d.outQueueSize = n
	}
	return d
}

func (d *Dispatcher) ensurePool() *Pool {
	d.poolOnce.Do(func() {
		d.pool = newPool(d.outQueueSize)
	})
	return d.pool
}

// CreateClient allocates a new ClientID, assigns it to the least-loaded
// Worker in the Pool, and registers a freshly built TdClient for it.
func (d *Dispatcher) CreateClient() ClientID {
	return d.createClientWithOutput(nil)
}

// createClientWithOutput is CreateClient with an optional private output
// queue override, used by the external-client single-session variant
// (singleclient.go) so independent Client callers don't share a reader.
func (d *Dispatcher) createClientWithOutput(out *outputQueue) ClientID {
	pool := d.ensurePool()
	id := ClientID(atomic.AddUint32(&d.nextID, 1))

	worker := pool.leastLoaded()
	client := d.factory(worker.callbackFor(id))
	worker.register <- registerMsg{id: id, client: client, out: out}

	d.mu.Lock()
	d.bindings[id] = worker
	d.mu.Unlock()

	if d.events != nil {
		d.events.PublishClientCreated(id)
	}
	return id
}

// Send enqueues req for client id under requestID. An unknown or
// torn-down id never returns a Go error: it synthesizes an
// Err{Code: 400} Response instead, delivered through the normal
// Receive path — spec §7's "not propagated synchronously".
func (d *Dispatcher) Send(id ClientID, requestID RequestID, req Request) {
	d.mu.RLock()
	worker, ok := d.bindings[id]
	d.mu.RUnlock()

	if !ok {
		d.ensurePool().out.push(invalidClientResponse(id, requestID))
		if d.events != nil {
			d.events.PublishInvalidSend(id)
		}
		return
	}
	worker.submit <- submitMsg{id: id, requestID: requestID, req: req}
}

// Receive waits up to timeout for the next Response. It returns the
// distinguished empty Response (IsEmpty() == true) if nothing arrived
// in time. Calling Receive concurrently from two goroutines panics.
func (d *Dispatcher) Receive(timeout time.Duration) Response {
	r, ok := d.ensurePool().out.waitBlocking(timeout)
	if !ok {
		return Response{}
	}
	return r
}

// Execute runs req against a stateless TdClient instance, built once per
// Dispatcher, that owns no session and never produces a Callback invocation — for
// calls the spec describes as needing no client/session context.
func (d *Dispatcher) Execute(req Request) (any, error) {
	if atomic.LoadInt32(&d.closed) == 1 {
		return nil, ErrPoolClosed
	}
	d.statelessOnce.Do(func() {
		d.stateless = d.factory(noopCallback{})
	})
	return d.stateless.Execute(req)
}

// ExecuteContext is Execute bounded by ctx, a supplement beyond spec.md
// following the teacher's habit of giving every blocking call a
// context-aware variant.
func (d *Dispatcher) ExecuteContext(ctx context.Context, req Request) (any, error) {
	type out struct {
		val any
		err error
	}
	ch := make(chan out, 1)
	go func() {
		val, err := d.Execute(req)
		ch <- out{val, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-ch:
		return o.val, o.err
	}
}

// Stats reports the current Pool load, for the observability surface.
func (d *Dispatcher) Stats() PoolStats {
	return d.ensurePool().Stats()
}

// Close asks every live client to terminate, drains the output queue
// until every one of them has emitted its termination sentinel, then
// retires the worker pool. Close is not safe to call concurrently with
// itself. It only drains the Pool-wide shared queue: clients created
// with a private output queue (the singleclient.go Client wrapper) must
// be closed individually via Client.Close before Close is called on
// their shared Dispatcher, or Close will wait forever for a sentinel it
// will never see on the shared queue.
func (d *Dispatcher) Close() {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return
	}
	pool := d.ensurePool()

	d.mu.Lock()
	pending := make(map[ClientID]*Worker, len(d.bindings))
	for id, w := range d.bindings {
		pending[id] = w
		w.closeReq <- closeMsg{id: id}
	}
	d.mu.Unlock()

	for len(pending) > 0 {
		r, ok := pool.out.waitBlocking(time.Second)
		if !ok {
			continue
		}
		if r.IsSentinel() {
			delete(pending, r.ClientID)
			d.mu.Lock()
			delete(d.bindings, r.ClientID)
			d.mu.Unlock()
			if d.events != nil {
				d.events.PublishClientTerminated(r.ClientID)
			}
		}
	}
	pool.close()
}

// noopCallback backs the stateless Execute path: it should never
// actually be invoked since Execute bypasses Submit entirely, but a
// TdClient implementation is free to assume its Callback is non-nil.
type noopCallback struct{}

func (noopCallback) OnResult(RequestID, any)  {}
func (noopCallback) OnError(RequestID, error) {}
func (noopCallback) Close()                   {}
