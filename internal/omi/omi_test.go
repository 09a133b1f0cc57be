package omi

import (
	"reflect"
	"testing"
)

func TestInsertEraseSetSemantics(t *testing.T) {
	var tr Tree
	ids := []MessageID{5, 2, 8, 1, 3, 7, 9}
	for _, id := range ids {
		tr.Insert(id)
	}

	got := tr.FindOlderMessages(10)
	want := []MessageID{1, 2, 3, 5, 7, 8, 9}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindOlderMessages(10) = %v, want %v", got, want)
	}

	tr.Erase(5)
	got = tr.FindOlderMessages(10)
	want = []MessageID{1, 2, 3, 7, 8, 9}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("after erase FindOlderMessages(10) = %v, want %v", got, want)
	}
}

func TestInsertDuplicatePanics(t *testing.T) {
	var tr Tree
	tr.Insert(4)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate insert")
		}
	}()
	tr.Insert(4)
}

func TestEraseAbsentPanics(t *testing.T) {
	var tr Tree
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on erase of absent id")
		}
	}()
	tr.Erase(1)
}

func TestTreapInvariants(t *testing.T) {
	var tr Tree
	ids := []MessageID{40, 10, 70, 5, 20, 60, 80, 1, 90, 35, 55}
	for _, id := range ids {
		tr.Insert(id)
	}

	var checkBST func(n *node, lo, hi *MessageID) int32
	checkBST = func(n *node, lo, hi *MessageID) int32 {
		if n == nil {
			return 1<<31 - 1 // +inf sentinel, never a real constraint violation
		}
		if lo != nil && n.id <= *lo {
			t.Fatalf("BST order violated at id %d (lo %d)", n.id, *lo)
		}
		if hi != nil && n.id >= *hi {
			t.Fatalf("BST order violated at id %d (hi %d)", n.id, *hi)
		}
		leftY := checkBST(n.left, lo, &n.id)
		rightY := checkBST(n.right, &n.id, hi)
		if n.left != nil && n.left.y > n.y {
			t.Fatalf("heap order violated: left child y %d > parent y %d", n.left.y, n.y)
		}
		if n.right != nil && n.right.y > n.y {
			t.Fatalf("heap order violated: right child y %d > parent y %d", n.right.y, n.y)
		}
		_ = leftY
		_ = rightY
		return n.y
	}
	checkBST(tr.root, nil, nil)
}

func TestRangeQueriesPartition(t *testing.T) {
	var tr Tree
	ids := []MessageID{10, 20, 30, 40, 50}
	for _, id := range ids {
		tr.Insert(id)
	}

	older := tr.FindOlderMessages(30)
	newer := tr.FindNewerMessages(30)

	seen := map[MessageID]bool{}
	for _, id := range older {
		seen[id] = true
	}
	for _, id := range newer {
		if seen[id] {
			t.Fatalf("id %d present in both older and newer partitions", id)
		}
	}
	if len(older)+len(newer) != len(ids) {
		t.Fatalf("partition sizes %d+%d != %d", len(older), len(newer), len(ids))
	}
	if seen[30] == false {
		t.Fatalf("older(30) should include the boundary id 30 itself")
	}
}

func TestFindMessageByDateMonotonic(t *testing.T) {
	var tr Tree
	tr.Insert(1)
	tr.Insert(2)
	tr.Insert(3)
	dates := map[MessageID]int64{1: 100, 2: 200, 3: 300}
	getDate := func(id MessageID) int64 { return dates[id] }

	id, ok := tr.FindMessageByDate(250, getDate)
	if !ok || id != 2 {
		t.Fatalf("FindMessageByDate(250) = (%d, %v), want (2, true)", id, ok)
	}

	_, ok = tr.FindMessageByDate(99, getDate)
	if ok {
		t.Fatalf("FindMessageByDate(99) should find nothing")
	}

	got := tr.FindMessagesByDate(150, 250, getDate)
	want := []MessageID{2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindMessagesByDate(150,250) = %v, want %v", got, want)
	}
}

func TestAdjacencyTransitivity(t *testing.T) {
	var tr Tree
	tr.Insert(10)
	tr.Insert(20)
	tr.Insert(30)

	tr.AttachToPrevious(20)
	if n := tr.find(10); !n.haveNext {
		t.Fatal("10.haveNext should be true after attach")
	}
	if n := tr.find(20); !n.havePrevious {
		t.Fatal("20.havePrevious should be true after attach")
	}

	tr.AttachToPrevious(30)
	n20 := tr.find(20)
	n30 := tr.find(30)
	if !n20.haveNext {
		t.Fatal("20.haveNext should be true after attaching 30")
	}
	if !n30.havePrevious {
		t.Fatal("30.havePrevious should be true")
	}
	if !n30.haveNext {
		t.Fatal("30.haveNext should inherit true because 20 was already mid-run (20.havePrevious was set)")
	}
}

func TestAttachToPreviousNoPredecessorPanics(t *testing.T) {
	var tr Tree
	tr.Insert(10)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when attaching previous with no predecessor")
		}
	}()
	tr.AttachToPrevious(10)
}

func TestAutoAttachForwardPath(t *testing.T) {
	var tr Tree
	tr.Insert(10)
	tr.Insert(30)

	res := tr.AutoAttach(20, 10)
	if !res.HavePrevious {
		t.Fatal("expected HavePrevious=true")
	}
	if res.HaveNext {
		t.Fatal("expected HaveNext=false: predecessor 10 had no haveNext set yet")
	}
	if !tr.find(10).haveNext {
		t.Fatal("predecessor 10 should now have haveNext=true")
	}
}

func TestAutoAttachSuccessorPathDoesNotMutate(t *testing.T) {
	var tr Tree
	tr.Insert(5)
	tr.Insert(20)

	before := *tr.find(20)

	res := tr.AutoAttach(10, 0)
	if res.HavePrevious {
		t.Fatal("successor path must report HavePrevious=false")
	}
	if !res.HaveNext {
		t.Fatal("successor path must report HaveNext=true")
	}

	after := *tr.find(20)
	if before != after {
		t.Fatal("successor path must not mutate the successor node")
	}
	if tr.find(5).haveNext {
		t.Fatal("successor path must not mutate the predecessor node either")
	}
}

func TestAutoAttachNoNeighbors(t *testing.T) {
	var tr Tree
	tr.Insert(50)
	res := tr.AutoAttach(50, 0)
	if res.HavePrevious || res.HaveNext {
		t.Fatalf("expected {false,false}, got %+v", res)
	}
}

func TestIteratorGreatestPredecessorContract(t *testing.T) {
	var tr Tree
	for _, id := range []MessageID{10, 20, 30} {
		tr.Insert(id)
	}

	it := tr.GetIterator(20)
	if id, ok := it.ID(); !ok || id != 20 {
		t.Fatalf("exact match: got (%d,%v), want (20,true)", id, ok)
	}

	it = tr.GetIterator(25)
	if id, ok := it.ID(); !ok || id != 20 {
		t.Fatalf("floor of 25: got (%d,%v), want (20,true)", id, ok)
	}

	it = tr.GetIterator(5)
	if it.Valid() {
		t.Fatal("floor of 5 should be invalid: nothing smaller is indexed")
	}
}

func TestIteratorNextPrev(t *testing.T) {
	var tr Tree
	for _, id := range []MessageID{10, 20, 30, 40} {
		tr.Insert(id)
	}

	it := tr.GetIterator(10)
	var seq []MessageID
	for {
		id, _ := it.ID()
		seq = append(seq, id)
		if !it.Next() {
			break
		}
	}
	want := []MessageID{10, 20, 30, 40}
	if !reflect.DeepEqual(seq, want) {
		t.Fatalf("forward walk = %v, want %v", seq, want)
	}

	it = tr.GetIterator(40)
	seq = nil
	for {
		id, _ := it.ID()
		seq = append(seq, id)
		if !it.Prev() {
			break
		}
	}
	want = []MessageID{40, 30, 20, 10}
	if !reflect.DeepEqual(seq, want) {
		t.Fatalf("backward walk = %v, want %v", seq, want)
	}
}

func TestTraverseGating(t *testing.T) {
	var tr Tree
	for _, id := range []MessageID{1, 2, 3, 4, 5, 6, 7} {
		tr.Insert(id)
	}

	var visited []MessageID
	tr.Traverse(
		func(id MessageID) bool { return id > 3 }, // only scan older when right of center
		func(id MessageID) bool { return id < 5 }, // only scan newer when left of center
		func(id MessageID) { visited = append(visited, id) },
	)
	if len(visited) == 0 {
		t.Fatal("expected at least the root to be visited")
	}
}

func TestMessageIDPredicates(t *testing.T) {
	server := MessageID(4) // bits 0-1 == 0
	yetUnsent := MessageID(5) // bits 0-1 == 1
	localOther := MessageID(6) // bits 0-1 == 2

	if !server.IsServer() || server.IsYetUnsent() {
		t.Fatalf("id %d should be server, not yet-unsent", server)
	}
	if !yetUnsent.IsYetUnsent() || yetUnsent.IsServer() {
		t.Fatalf("id %d should be yet-unsent, not server", yetUnsent)
	}
	if localOther.IsServer() || localOther.IsYetUnsent() {
		t.Fatalf("id %d should be neither server nor yet-unsent", localOther)
	}
	if MessageID(0).Valid() {
		t.Fatal("zero message id must not be valid")
	}
}
