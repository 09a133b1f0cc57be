package dispatch

// session is one client's slice of state hosted on a Worker's goroutine.
// It is never touched from any other goroutine: every field here is read
// and written exclusively inside that Worker's run loop, the same
// "single-threaded, no locks needed" discipline the teacher's Shard
// applies to its clients map.
type session struct {
	id     ClientID
	client TdClient

	// out overrides the Worker's shared output queue when set; see
	// registerMsg.out.
	out *outputQueue

	// pending counts requests submitted but not yet answered by a
	// terminal OnResult/OnError. Bookkeeping only: nothing reads it, and
	// Pool.Stats counts sessions, not requests.
	pending int
	closing bool
}

func newSession(id ClientID, client TdClient) *session {
	return &session{id: id, client: client}
}

func (s *session) submit(requestID RequestID, req Request) error {
	if s.closing {
		return errClientClosed
	}
	s.pending++
	return s.client.Submit(requestID, req)
}

func (s *session) requestClose() {
	if s.closing {
		return
	}
	s.closing = true
	s.client.Stop()
}
