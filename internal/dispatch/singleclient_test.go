package dispatch

import (
	"testing"
	"time"
)

func TestSingleClientRoundTrip(t *testing.T) {
	c := NewClient(newEchoClient)
	defer c.Close()

	c.Send(1, Request{Function: "hello"})
	r := c.Receive(time.Second)
	if r.IsEmpty() {
		t.Fatal("expected a response")
	}
	res, ok := r.Object.(Result)
	if !ok || res.Payload.(string) != "hello" {
		t.Fatalf("unexpected response %#v", r)
	}
}

func TestSingleClientIndependentQueues(t *testing.T) {
	c1 := NewClient(newEchoClient)
	c2 := NewClient(newEchoClient)
	defer c1.Close()
	defer c2.Close()

	c1.Send(1, Request{Function: "one"})
	c2.Send(1, Request{Function: "two"})

	r1 := c1.Receive(time.Second)
	r2 := c2.Receive(time.Second)

	if r1.Object.(Result).Payload.(string) != "one" {
		t.Fatalf("c1 got wrong payload: %#v", r1)
	}
	if r2.Object.(Result).Payload.(string) != "two" {
		t.Fatalf("c2 got wrong payload: %#v", r2)
	}
}

func TestReleaseSharedPoolTearsDownOnLastReference(t *testing.T) {
	sharedMu.Lock()
	startedNil := shared == nil
	sharedMu.Unlock()
	if !startedNil {
		t.Skip("shared pool already initialized by another test in this run")
	}

	c := NewClient(newEchoClient)
	c.Close()

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil {
		t.Fatal("expected shared pool to be released after last client closed")
	}
}
