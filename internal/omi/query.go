package omi

// FindOlderMessages returns every indexed id <= maxID, ascending.
func (t *Tree) FindOlderMessages(maxID MessageID) []MessageID {
	var out []MessageID
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		walk(n.left)
		if n.id <= maxID {
			out = append(out, n.id)
			walk(n.right)
		}
		// n.id > maxID implies everything in n.right is > maxID too.
	}
	walk(t.root)
	return out
}

// FindNewerMessages returns every indexed id > minID, ascending.
func (t *Tree) FindNewerMessages(minID MessageID) []MessageID {
	var out []MessageID
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if n.id > minID {
			walk(n.left)
			out = append(out, n.id)
		}
		walk(n.right)
	}
	walk(t.root)
	return out
}

// FindMessageByDate returns the greatest indexed id whose date (per
// getDate) is <= target. getDate need only be weakly consistent with
// id order — see spec §4.1 — the pruning below never skips a right
// subtree while still searching for a larger-date candidate, so it
// stays correct even when date and id order diverge locally.
func (t *Tree) FindMessageByDate(target int64, getDate func(MessageID) int64) (MessageID, bool) {
	var walk func(n *node) *node
	walk = func(n *node) *node {
		if n == nil {
			return nil
		}
		if getDate(n.id) > target {
			return walk(n.left)
		}
		if hit := walk(n.right); hit != nil {
			return hit
		}
		return n
	}
	hit := walk(t.root)
	if hit == nil {
		return 0, false
	}
	return hit.id, true
}

// FindMessagesByDate returns every indexed id whose date falls in
// [minDate, maxDate], ascending by id. Unlike FindMessageByDate this
// collects every match rather than just the best one, so it cannot
// safely prune subtrees on date alone when date isn't guaranteed
// monotonic in id — it relies on the tree's id order only for output
// ordering, and visits every node.
func (t *Tree) FindMessagesByDate(minDate, maxDate int64, getDate func(MessageID) int64) []MessageID {
	var out []MessageID
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		walk(n.left)
		if d := getDate(n.id); d >= minDate && d <= maxDate {
			out = append(out, n.id)
		}
		walk(n.right)
	}
	walk(t.root)
	return out
}

// Traverse performs an in-order walk in which descent into the left
// (older) and right (newer) subtree of each node is separately gated
// by caller predicates, letting the caller prune either direction as
// soon as it has seen enough.
func (t *Tree) Traverse(needScanOlder, needScanNewer func(id MessageID) bool, visit func(id MessageID)) {
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if needScanOlder(n.id) {
			walk(n.left)
		}
		visit(n.id)
		if needScanNewer(n.id) {
			walk(n.right)
		}
	}
	walk(t.root)
}
