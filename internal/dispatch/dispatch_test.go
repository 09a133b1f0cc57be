package dispatch

import (
	"testing"
	"time"
)

func TestCreateClientSendReceiveFIFO(t *testing.T) {
	d := New(newEchoClient)
	defer closeAndDrain(d)

	id := d.CreateClient()
	for i := RequestID(1); i <= 3; i++ {
		d.Send(id, i, Request{Function: int(i) * 10})
	}

	var got []int
	for i := 0; i < 3; i++ {
		r := d.Receive(time.Second)
		if r.IsEmpty() {
			t.Fatalf("expected a response, got empty (iteration %d)", i)
		}
		res, ok := r.Object.(Result)
		if !ok {
			t.Fatalf("expected Result, got %#v", r.Object)
		}
		got = append(got, res.Payload.(int))
	}

	want := []int{10, 20, 30}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("FIFO order violated: got %v, want %v", got, want)
		}
	}
}

func TestSendToUnknownClientSynthesizes400(t *testing.T) {
	d := New(newEchoClient)
	defer closeAndDrain(d)

	d.Send(ClientID(999), 1, Request{Function: "x"})

	r := d.Receive(time.Second)
	if r.IsEmpty() {
		t.Fatal("expected the synthesized 400 response")
	}
	errObj, ok := r.Object.(Err)
	if !ok {
		t.Fatalf("expected Err, got %#v", r.Object)
	}
	if errObj.Code != 400 {
		t.Fatalf("expected code 400, got %d", errObj.Code)
	}
}

func TestTerminationSentinelAndPostTerminalSend(t *testing.T) {
	d := New(newEchoClient)
	defer closeAndDrain(d)

	id := d.CreateClient()
	d.mu.RLock()
	worker := d.bindings[id]
	d.mu.RUnlock()
	worker.closeReq <- closeMsg{id: id}

	r := d.Receive(time.Second)
	if !r.IsSentinel() || r.ClientID != id {
		t.Fatalf("expected termination sentinel for %d, got %#v", id, r)
	}

	d.mu.Lock()
	delete(d.bindings, id)
	d.mu.Unlock()

	d.Send(id, 1, Request{Function: "too late"})
	r = d.Receive(time.Second)
	errObj, ok := r.Object.(Err)
	if !ok || errObj.Code != 400 {
		t.Fatalf("expected 400 after termination, got %#v", r)
	}
}

func TestApplicationErrorPropagates(t *testing.T) {
	d := New(newFailingClient)
	defer closeAndDrain(d)

	id := d.CreateClient()
	d.Send(id, 1, Request{Function: "x"})

	r := d.Receive(time.Second)
	errObj, ok := r.Object.(Err)
	if !ok {
		t.Fatalf("expected Err, got %#v", r.Object)
	}
	if errObj.Message != "boom" {
		t.Fatalf("expected propagated message, got %q", errObj.Message)
	}
}

func TestMultiClientIsolation(t *testing.T) {
	d := New(newEchoClient)
	defer closeAndDrain(d)

	a := d.CreateClient()
	b := d.CreateClient()

	d.Send(a, 1, Request{Function: "a1"})
	d.Send(b, 1, Request{Function: "b1"})
	d.Send(a, 2, Request{Function: "a2"})

	seen := map[ClientID]int{}
	for i := 0; i < 3; i++ {
		r := d.Receive(time.Second)
		if r.IsEmpty() {
			t.Fatalf("expected response %d", i)
		}
		seen[r.ClientID]++
	}
	if seen[a] != 2 || seen[b] != 1 {
		t.Fatalf("expected 2 responses for a and 1 for b, got %v", seen)
	}
}

func TestConcurrentReceivePanics(t *testing.T) {
	d := New(newEchoClient)
	defer closeAndDrain(d)
	pool := d.ensurePool()

	pool.out.lockReader()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on concurrent Receive")
		}
		pool.out.unlockReader()
	}()
	pool.out.lockReader()
}

func TestPoolSizeClamped(t *testing.T) {
	if got := clamp(1, 8, 1000); got != 8 {
		t.Fatalf("clamp floor failed: got %d", got)
	}
	if got := clamp(5000, 8, 1000); got != 1000 {
		t.Fatalf("clamp ceiling failed: got %d", got)
	}
	if got := clamp(100, 8, 1000); got != 100 {
		t.Fatalf("clamp passthrough failed: got %d", got)
	}

	n := poolSize()
	if n < 8 || n > 1000 {
		t.Fatalf("poolSize() = %d, want within [8,1000]", n)
	}
}

func closeAndDrain(d *Dispatcher) {
	d.Close()
}
