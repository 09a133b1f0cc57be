// Package omi implements the Ordered Message Index: a per-dialog,
// order-preserving treap of message identifiers supporting insertion,
// deletion, range queries, date lookup, and adjacency bookkeeping.
//
// A Tree is not safe for concurrent use. The owning collaborator (a
// dialog object; in the demo binary, the single goroutine running its
// OMI walkthrough) is responsible for serializing access, exactly as
// spec'd: OMI never blocks and never takes a lock of its own.
package omi

// MessageID is a totally ordered, opaque message identifier. Its
// integer value doubles as the treap's primary (search) key and as the
// seed for the deterministic secondary (heap) key.
//
// Bit layout, low to high, mirrors the scheme real Telegram-protocol
// clients use to distinguish server and client-local identifiers:
//
//	bits 0-1: 0 = server-assigned, 1 = yet-unsent local message,
//	          2 = other client-local message (e.g. local service msg)
//	bits 2+:  monotonically increasing sequence / server id payload
type MessageID int64

const (
	flagServer     = 0
	flagYetUnsent  = 1
	flagLocalOther = 2
	flagMask       = 0x3
)

// Valid reports whether id can appear in a Tree. The zero value and
// negative identifiers are never valid.
func (id MessageID) Valid() bool {
	return id > 0
}

// IsServer reports whether id was assigned by the server, as opposed to
// being a client-local placeholder.
func (id MessageID) IsServer() bool {
	return id.Valid() && int64(id)&flagMask == flagServer
}

// IsYetUnsent reports whether id names a message queued locally that
// has not yet been acknowledged by the server.
func (id MessageID) IsYetUnsent() bool {
	return id.Valid() && int64(id)&flagMask == flagYetUnsent
}

// randomY derives the treap's heap key deterministically from id, per
// spec: (message_id * 2101234567) mod 2^32, reinterpreted as signed
// 32-bit. Deterministic derivation means two Trees built from the same
// insertion set always balance identically, which is what makes the
// treap invariants testable by direct structural comparison.
func randomY(id MessageID) int32 {
	return int32(uint32(int64(id)) * 2101234567)
}
