// Package tdclient provides a stand-in TdClient for the demo binary,
// since the real client/protocol
// implementation backing the Client Dispatch Layer is explicitly out of
// scope (spec §1). It simulates the asynchronous, cross-goroutine
// Callback invocation pattern a real collaborator would exhibit.
package tdclient

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"odin-tdcore/internal/dispatch"
)

// Call is the Function payload this mock understands: Method names a
// pretend RPC and Args carries opaque arguments, echoed back verbatim on
// success.
type Call struct {
	Method string
	Args   map[string]any
}

// Mock answers every Submit asynchronously, from its own goroutine, with
// either a success echoing the call back or a simulated failure when
// Method == "fail" — useful for exercising the Err response path end to
// end.
type Mock struct {
	cb    dispatch.Callback
	delay time.Duration

	// inflight tracks Submit goroutines that have not answered yet, so
	// Stop can fire Close only after every earlier response.
	inflight sync.WaitGroup
}

// New builds a Mock wired to cb. delay bounds the simulated latency
// before a response fires; 0 disables the delay.
func New(cb dispatch.Callback, delay time.Duration) dispatch.TdClient {
	return &Mock{cb: cb, delay: delay}
}

func (m *Mock) Submit(requestID dispatch.RequestID, req dispatch.Request) error {
	call, ok := req.Function.(Call)
	if !ok {
		return fmt.Errorf("tdclient: unsupported request payload %T", req.Function)
	}
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		if m.delay > 0 {
			// rand.Int63n draws from the package-level global source,
			// which is mutex-guarded — safe across the concurrent
			// goroutines distinct Submit calls spawn, unlike a shared
			// *rand.Rand would be.
			time.Sleep(time.Duration(rand.Int63n(int64(m.delay))))
		}
		if call.Method == "fail" {
			m.cb.OnError(requestID, fmt.Errorf("tdclient: simulated failure for %s", call.Method))
			return
		}
		m.cb.OnResult(requestID, call.Args)
	}()
	return nil
}

func (m *Mock) Execute(req dispatch.Request) (any, error) {
	call, ok := req.Function.(Call)
	if !ok {
		return nil, fmt.Errorf("tdclient: unsupported request payload %T", req.Function)
	}
	if call.Method == "fail" {
		return nil, fmt.Errorf("tdclient: simulated failure for %s", call.Method)
	}
	return call.Args, nil
}

func (m *Mock) Stop() {
	go func() {
		m.inflight.Wait()
		m.cb.Close()
	}()
}
