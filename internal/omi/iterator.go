package omi

// Iterator walks a Tree's in-order sequence. It is a stack of ancestors
// recorded during the descent from the root to the current node — the
// "language-neutral realization" spec §9 calls for. A Tree's structure
// must not change between GetIterator and the Prev/Next calls an
// adjacency operation makes against it; nothing in this package mutates
// tree shape outside of Insert/Erase, so that invariant always holds
// for the adjacency APIs in attach.go.
type Iterator struct {
	stack []*node
}

// Valid reports whether the iterator currently names a node.
func (it *Iterator) Valid() bool {
	return len(it.stack) > 0
}

// ID returns the message id the iterator currently names.
func (it *Iterator) ID() (MessageID, bool) {
	if !it.Valid() {
		return 0, false
	}
	return it.stack[len(it.stack)-1].id, true
}

func (it *Iterator) current() *node {
	return it.stack[len(it.stack)-1]
}

// GetIterator returns an iterator positioned at id if present, or at
// the greatest id strictly less than id otherwise (the "greatest
// predecessor" contract inherited from the source). An id smaller than
// every indexed id yields an invalid iterator.
func (t *Tree) GetIterator(id MessageID) *Iterator {
	var stack []*node
	var floorStack []*node
	n := t.root
	for n != nil {
		stack = append(stack, n)
		switch {
		case id == n.id:
			return &Iterator{stack: stack}
		case id < n.id:
			n = n.left
		default: // id > n.id: n is a candidate floor, keep looking right for a tighter one
			floorStack = append([]*node(nil), stack...)
			n = n.right
		}
	}
	return &Iterator{stack: floorStack}
}

// Next advances the iterator to the in-order successor. Returns false
// (and invalidates the iterator) if there is none.
func (it *Iterator) Next() bool {
	if !it.Valid() {
		return false
	}
	n := it.current()
	if n.right != nil {
		n = n.right
		it.stack = append(it.stack, n)
		for n.left != nil {
			n = n.left
			it.stack = append(it.stack, n)
		}
		return true
	}
	for len(it.stack) > 1 {
		child := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		parent := it.stack[len(it.stack)-1]
		if parent.left == child {
			return true
		}
	}
	it.stack = it.stack[:0]
	return false
}

// Prev moves the iterator to the in-order predecessor. Returns false
// (and invalidates the iterator) if there is none — the "iterator
// decrement past the minimum" case spec §7 treats as fatal for callers
// that require a neighbor to exist.
func (it *Iterator) Prev() bool {
	if !it.Valid() {
		return false
	}
	n := it.current()
	if n.left != nil {
		n = n.left
		it.stack = append(it.stack, n)
		for n.right != nil {
			n = n.right
			it.stack = append(it.stack, n)
		}
		return true
	}
	for len(it.stack) > 1 {
		child := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		parent := it.stack[len(it.stack)-1]
		if parent.right == child {
			return true
		}
	}
	it.stack = it.stack[:0]
	return false
}
