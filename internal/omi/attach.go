package omi

// AttachResult is the {have_previous, have_next} pair AutoAttach
// reports back to the caller.
type AttachResult struct {
	HavePrevious bool
	HaveNext     bool
}

// AttachToPrevious sets id's havePrevious flag and propagates adjacency
// to id's predecessor P: P.haveNext always becomes true. id additionally
// inherits haveNext=true when P was already, itself, linked to its own
// predecessor (P.havePrevious was true before this call) — meaning P
// sits mid-run, and the run now extends through id. Panics if id is
// absent or has no predecessor — both are programmer errors per spec
// §7.
//
// Note on fidelity: spec §4.1's prose describes the merge condition as
// "the predecessor already has have_next true", but its own worked
// example (§8, "Adjacency propagation") is only consistent with the
// condition implemented here (gated on the predecessor's havePrevious,
// not haveNext) — see DESIGN.md for the full derivation. The worked
// example is taken as authoritative since it is the directly testable
// artifact.
func (t *Tree) AttachToPrevious(id MessageID) {
	n := t.find(id)
	if n == nil {
		panic("omi: attach_message_to_previous of absent message id")
	}
	n.havePrevious = true

	it := t.GetIterator(id)
	if !it.Prev() {
		panic("omi: attach_message_to_previous has no predecessor")
	}
	p := it.current()
	midRun := p.havePrevious
	p.haveNext = true
	if midRun {
		n.haveNext = true
	}
}

// AttachToNext is the symmetric counterpart of AttachToPrevious: id's
// successor S always gets havePrevious=true, and id inherits
// havePrevious=true when S was already mid-run (S.haveNext was true
// before this call).
func (t *Tree) AttachToNext(id MessageID) {
	n := t.find(id)
	if n == nil {
		panic("omi: attach_message_to_next of absent message id")
	}
	n.haveNext = true

	it := t.GetIterator(id)
	if !it.Next() {
		panic("omi: attach_message_to_next has no successor")
	}
	s := it.current()
	midRun := s.haveNext
	s.havePrevious = true
	if midRun {
		n.havePrevious = true
	}
}

// AutoAttach implements the heuristic adjacency guess for newly learned
// messages, per spec §4.1:
//
//   - If a predecessor P exists and either P already has haveNext set,
//     or lastID is valid and P's id is >= lastID, this attaches forward:
//     id gets havePrevious=true if it is already indexed, P gets
//     haveNext=true (even if already
//     set), and the result's HaveNext field reports whether P.haveNext
//     was already true before this call.
//   - Otherwise, if id is not yet-unsent and a successor S exists, the
//     result is {false, true} and nothing is mutated. This resolves the
//     open question in spec §9: the source path through the successor
//     branch asserts !successor.havePrevious immediately beforehand,
//     which makes the value it would have returned for HavePrevious
//     necessarily false, and it never writes back to either node. The
//     asymmetry with the predecessor branch (which does mutate) is a
//     known quirk of the source, not a bug in this port.
//   - Otherwise the result is {false, false} and nothing is mutated.
//
// id need not be indexed yet: for an absent id, P and S are the nearest
// indexed ids below and above it.
func (t *Tree) AutoAttach(id, lastID MessageID) AttachResult {
	n := t.find(id)

	if p, ok := t.predecessor(id); ok {
		if p.haveNext || (lastID.Valid() && p.id >= lastID) {
			already := p.haveNext
			p.haveNext = true
			if n != nil {
				n.havePrevious = true
			}
			return AttachResult{HavePrevious: true, HaveNext: already}
		}
	}

	if !id.IsYetUnsent() {
		if _, ok := t.successor(id); ok {
			return AttachResult{HavePrevious: false, HaveNext: true}
		}
	}

	return AttachResult{HavePrevious: false, HaveNext: false}
}

func (t *Tree) predecessor(id MessageID) (*node, bool) {
	it := t.GetIterator(id)
	if !it.Valid() {
		return nil, false
	}
	if idAt, _ := it.ID(); idAt == id {
		if !it.Prev() {
			return nil, false
		}
		return it.current(), true
	}
	// GetIterator already landed on the floor (< id) when id is absent.
	return it.current(), true
}

func (t *Tree) successor(id MessageID) (*node, bool) {
	it := t.GetIterator(id)
	if !it.Valid() {
		// id is smaller than everything indexed: the successor is the
		// minimum element, if any.
		if min, ok := t.Min(); ok {
			return t.find(min), true
		}
		return nil, false
	}
	if idAt, _ := it.ID(); idAt != id {
		// floor landed strictly below id; its in-order successor is the
		// smallest element greater than id, which is exactly what we want.
		if !it.Next() {
			return nil, false
		}
		return it.current(), true
	}
	if !it.Next() {
		return nil, false
	}
	return it.current(), true
}
