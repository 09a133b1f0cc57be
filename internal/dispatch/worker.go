package dispatch

import "sync/atomic"

// registerMsg asks a Worker to host a new session.
type registerMsg struct {
	id     ClientID
	client TdClient
	// out overrides the Pool-wide shared queue for this session's
	// responses, used by the external-client single-session variant so
	// that independent Client callers don't contend on one reader.
	out *outputQueue
}

// submitMsg is a queued call into a session's TdClient.
type submitMsg struct {
	id        ClientID
	requestID RequestID
	req       Request
}

// closeMsg asks a Worker to begin tearing a session down.
type closeMsg struct {
	id ClientID
}

// sessionEvent is how a Callback reports back into the Worker that owns
// the session it belongs to. Callback methods can be invoked by the
// TdClient collaborator from any goroutine, so they never touch session
// state directly — they hand an event to the Worker's channel instead,
// and only the Worker's own goroutine ever mutates a session.
type sessionEvent struct {
	id        ClientID
	requestID RequestID
	result    any
	err       error
	terminal  bool
}

// Worker is a single event-loop goroutine hosting zero or more sessions,
// the direct analog of the teacher's Shard: all session state is
// touched by exactly one goroutine, so no locks are needed inside run.
type Worker struct {
	idx      int
	out      *outputQueue
	sessions map[ClientID]*session

	register chan registerMsg
	submit   chan submitMsg
	closeReq chan closeMsg
	events   chan sessionEvent
	shutdown chan struct{}
	done     chan struct{}

	sessionCount int32 // atomic; read cross-goroutine by Pool for load balancing
}

func newWorker(idx int, out *outputQueue) *Worker {
	w := &Worker{
		idx:      idx,
		out:      out,
		sessions: make(map[ClientID]*session),
		register: make(chan registerMsg, 64),
		submit:   make(chan submitMsg, 256),
		closeReq: make(chan closeMsg, 64),
		events:   make(chan sessionEvent, 256),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	// A client's register is always sent before any submit or close for
	// it, but select picks randomly among ready channels, so queued
	// registrations are handled first.
	registerQueued := func() {
		for {
			select {
			case msg := <-w.register:
				w.handleRegister(msg)
			default:
				return
			}
		}
	}
	for {
		select {
		case <-w.shutdown:
			w.drainShutdown()
			return
		case msg := <-w.register:
			w.handleRegister(msg)
		case msg := <-w.submit:
			registerQueued()
			w.handleSubmit(msg)
		case msg := <-w.closeReq:
			registerQueued()
			w.handleCloseRequest(msg)
		case ev := <-w.events:
			w.handleEvent(ev)
		}
	}
}

func (w *Worker) handleRegister(msg registerMsg) {
	s := newSession(msg.id, msg.client)
	s.out = msg.out
	w.sessions[msg.id] = s
	atomic.AddInt32(&w.sessionCount, 1)
}

func (w *Worker) outputFor(s *session) *outputQueue {
	if s.out != nil {
		return s.out
	}
	return w.out
}

func (w *Worker) handleSubmit(msg submitMsg) {
	s, ok := w.sessions[msg.id]
	if !ok {
		w.out.push(invalidClientResponse(msg.id, msg.requestID))
		return
	}
	if err := s.submit(msg.requestID, msg.req); err != nil {
		if err == errClientClosed {
			w.outputFor(s).push(invalidClientResponse(msg.id, msg.requestID))
			return
		}
		w.outputFor(s).push(Response{ClientID: msg.id, RequestID: msg.requestID, Object: Err{Code: 0, Message: err.Error()}})
	}
}

func (w *Worker) handleCloseRequest(msg closeMsg) {
	s, ok := w.sessions[msg.id]
	if !ok {
		return
	}
	s.requestClose()
}

func (w *Worker) handleEvent(ev sessionEvent) {
	s, ok := w.sessions[ev.id]
	if !ok {
		return
	}
	out := w.outputFor(s)
	if ev.terminal {
		out.push(Response{ClientID: ev.id, RequestID: 0, Object: nil})
		delete(w.sessions, ev.id)
		atomic.AddInt32(&w.sessionCount, -1)
		return
	}
	s.pending--
	if ev.err != nil {
		out.push(Response{ClientID: ev.id, RequestID: ev.requestID, Object: Err{Code: 0, Message: ev.err.Error()}})
		return
	}
	out.push(Response{ClientID: ev.id, RequestID: ev.requestID, Object: Result{Payload: ev.result}})
}

// drainShutdown asks every hosted session's client to stop and forwards
// any already-queued events before the Worker retires. It does not wait
// for every client to acknowledge: Dispatcher.Close is responsible for
// draining the shared output queue until every client's sentinel has
// been observed.
func (w *Worker) drainShutdown() {
	for _, s := range w.sessions {
		s.requestClose()
	}
	for {
		select {
		case ev := <-w.events:
			w.handleEvent(ev)
		default:
			return
		}
	}
}

func (w *Worker) load() int32 {
	return atomic.LoadInt32(&w.sessionCount)
}

// callbackFor builds the Callback a session's TdClient drives, routing
// every invocation back through this Worker's events channel regardless
// of which goroutine the TdClient calls it from.
func (w *Worker) callbackFor(id ClientID) Callback {
	return callbackFunc{
		onResult: func(requestID RequestID, payload any) {
			w.events <- sessionEvent{id: id, requestID: requestID, result: payload}
		},
		onError: func(requestID RequestID, err error) {
			w.events <- sessionEvent{id: id, requestID: requestID, err: err}
		},
		onClose: func() {
			w.events <- sessionEvent{id: id, terminal: true}
		},
	}
}
