package lx

import (
	"testing"
)

func order(side Side, price Price, size Size, trader string) Order {
	return Order{
		Symbol: NewFixedString("XYZ"),
		Trader: NewFixedString(trader),
		Side:   side,
		Price:  price,
		Size:   size,
	}
}

// TestSimpleQueueNoCross covers spec.md §8 scenario 1.
func TestSimpleQueueNoCross(t *testing.T) {
	e := NewEngine("XYZ")
	var execs []Execution
	e.OnExecution = func(x Execution) { execs = append(execs, x) }

	id1 := e.Limit(order(Bid, 100, 10, "A"))
	if id1 != 1 {
		t.Fatalf("expected id 1, got %d", id1)
	}
	if len(execs) != 0 {
		t.Fatalf("expected no executions, got %v", execs)
	}
	if bp, ok := e.BestBid(); !ok || bp != 100 {
		t.Fatalf("expected best bid 100, got %d ok=%v", bp, ok)
	}

	id2 := e.Limit(order(Ask, 101, 10, "B"))
	if id2 != 2 {
		t.Fatalf("expected id 2, got %d", id2)
	}
	if len(execs) != 0 {
		t.Fatalf("expected no executions, got %v", execs)
	}
	if ap, ok := e.BestAsk(); !ok || ap != 101 {
		t.Fatalf("expected best ask 101, got %d ok=%v", ap, ok)
	}
}

// TestExactCross covers spec.md §8 scenario 2.
func TestExactCross(t *testing.T) {
	e := NewEngine("XYZ")
	var execs []Execution
	e.OnExecution = func(x Execution) { execs = append(execs, x) }

	e.Limit(order(Bid, 100, 10, "A"))
	id2 := e.Limit(order(Ask, 100, 10, "B"))
	if id2 != 2 {
		t.Fatalf("expected id 2, got %d", id2)
	}

	if len(execs) != 2 {
		t.Fatalf("expected 2 executions, got %d: %v", len(execs), execs)
	}
	assertHasExecution(t, execs, Bid, "A", 100, 10)
	assertHasExecution(t, execs, Ask, "B", 100, 10)

	if _, ok := e.BestBid(); ok {
		t.Fatal("expected bid side empty")
	}
	if _, ok := e.BestAsk(); ok {
		t.Fatal("expected ask side empty")
	}
}

// TestPartialFillIncomingRests covers spec.md §8 scenario 3.
func TestPartialFillIncomingRests(t *testing.T) {
	e := NewEngine("XYZ")
	var execs []Execution
	e.OnExecution = func(x Execution) { execs = append(execs, x) }

	e.Limit(order(Bid, 100, 10, "A"))
	e.Limit(order(Ask, 100, 4, "B"))

	if len(execs) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(execs))
	}
	assertHasExecution(t, execs, Bid, "A", 100, 4)
	assertHasExecution(t, execs, Ask, "B", 100, 4)

	size, count := e.Depth(Bid, 100)
	if size != 6 || count != 1 {
		t.Fatalf("expected 1 resting order of size 6, got size=%d count=%d", size, count)
	}
}

// TestSweepMultipleLevels covers spec.md §8 scenario 4.
func TestSweepMultipleLevels(t *testing.T) {
	e := NewEngine("XYZ")
	var execs []Execution
	e.OnExecution = func(x Execution) { execs = append(execs, x) }

	e.Limit(order(Ask, 101, 5, "S1"))
	e.Limit(order(Ask, 102, 5, "S2"))
	id3 := e.Limit(order(Bid, 103, 8, "B"))
	if id3 != 3 {
		t.Fatalf("expected id 3, got %d", id3)
	}

	if len(execs) != 4 {
		t.Fatalf("expected 4 executions, got %d: %v", len(execs), execs)
	}
	assertHasExecution(t, execs, Ask, "S1", 101, 5)
	assertHasExecution(t, execs, Bid, "B", 101, 5)
	assertHasExecution(t, execs, Ask, "S2", 102, 3)
	assertHasExecution(t, execs, Bid, "B", 102, 3)

	size, count := e.Depth(Ask, 102)
	if size != 2 || count != 1 {
		t.Fatalf("expected ask id 2 remaining with size 2, got size=%d count=%d", size, count)
	}
	if _, ok := e.BestBid(); ok {
		t.Fatal("expected bid side empty")
	}
}

// TestTimePriorityWithinLevel covers spec.md §8 scenario 5.
func TestTimePriorityWithinLevel(t *testing.T) {
	e := NewEngine("XYZ")
	var execs []Execution
	e.OnExecution = func(x Execution) { execs = append(execs, x) }

	e.Limit(order(Bid, 100, 10, "A"))
	e.Limit(order(Bid, 100, 10, "B"))
	e.Limit(order(Ask, 100, 10, "S"))

	if len(execs) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(execs))
	}
	assertHasExecution(t, execs, Bid, "A", 100, 10)
	assertHasExecution(t, execs, Ask, "S", 100, 10)

	size, count := e.Depth(Bid, 100)
	if size != 10 || count != 1 {
		t.Fatalf("expected B still resting with size 10, got size=%d count=%d", size, count)
	}
}

// TestCancelThenNoMatch covers spec.md §8 scenario 6.
func TestCancelThenNoMatch(t *testing.T) {
	e := NewEngine("XYZ")
	var execs []Execution
	e.OnExecution = func(x Execution) { execs = append(execs, x) }

	id1 := e.Limit(order(Bid, 100, 10, "A"))
	e.Cancel(id1)
	id2 := e.Limit(order(Ask, 100, 10, "B"))

	if len(execs) != 0 {
		t.Fatalf("expected no executions, got %v", execs)
	}
	size, count := e.Depth(Ask, 100)
	if size != 10 || count != 1 {
		t.Fatalf("expected ask id %d resting with size 10, got size=%d count=%d", id2, size, count)
	}
}

// TestCancelUnknownIsNoop exercises spec.md §7's silent no-op rule.
func TestCancelUnknownIsNoop(t *testing.T) {
	e := NewEngine("XYZ")
	calls := 0
	e.OnExecution = func(Execution) { calls++ }

	e.Cancel(12345) // never issued
	e.Limit(order(Bid, 100, 1, "A"))
	e.Cancel(999) // never issued
	if calls != 0 {
		t.Fatalf("expected no executions from unknown cancels, got %d", calls)
	}
}

// TestCancelConsumedIsNoop: cancelling a consumed identifier is a no-op.
func TestCancelConsumedIsNoop(t *testing.T) {
	e := NewEngine("XYZ")
	id1 := e.Limit(order(Bid, 100, 10, "A"))
	e.Limit(order(Ask, 100, 10, "B")) // fully consumes id1

	e.Cancel(id1) // already gone, must not panic or affect state
	if _, ok := e.BestBid(); ok {
		t.Fatal("expected bid side still empty")
	}
}

// TestIdentifierMonotonicity checks successive Limit calls return
// 1, 2, 3, ... within one lifetime.
func TestIdentifierMonotonicity(t *testing.T) {
	e := NewEngine("XYZ")
	for i := 1; i <= 100; i++ {
		id := e.Limit(order(Bid, Price(100+i%50), 1, "A"))
		if id != OrderID(i) {
			t.Fatalf("expected id %d, got %d", i, id)
		}
	}
}

// TestInitDestroyInitResets covers the init -> destroy -> init round
// trip law in spec.md §8.
func TestInitDestroyInitResets(t *testing.T) {
	e := NewEngine("XYZ")
	e.Limit(order(Bid, 100, 10, "A"))
	e.Limit(order(Ask, 101, 10, "B"))

	e.Destroy()
	e.Init("XYZ")

	if _, ok := e.BestBid(); ok {
		t.Fatal("expected empty bid side after reinit")
	}
	if _, ok := e.BestAsk(); ok {
		t.Fatal("expected empty ask side after reinit")
	}
	id := e.Limit(order(Bid, 100, 1, "A"))
	if id != 1 {
		t.Fatalf("expected next id to be 1 after reinit, got %d", id)
	}
}

// TestCancelRoundTrip: submitting an order then cancelling it leaves
// the book identical to its pre-submission state and emits no
// executions (spec.md §8).
func TestCancelRoundTrip(t *testing.T) {
	e := NewEngine("XYZ")
	e.Limit(order(Bid, 100, 5, "A"))
	before := snapshot(e)

	id := e.Limit(order(Bid, 101, 7, "Z"))
	calls := 0
	e.OnExecution = func(Execution) { calls++ }
	e.Cancel(id)

	if calls != 0 {
		t.Fatalf("expected no executions from cancel, got %d", calls)
	}
	after := snapshot(e)
	if before != after {
		t.Fatalf("book changed across submit+cancel round trip: before=%v after=%v", before, after)
	}
}

// TestBoundaryPrices: MIN_PRICE and MAX_PRICE behave like any other
// price.
func TestBoundaryPrices(t *testing.T) {
	e := NewEngine("XYZ")
	e.Limit(order(Bid, MinPrice, 5, "A"))
	e.Limit(order(Ask, MaxPrice, 5, "B"))

	if bp, ok := e.BestBid(); !ok || bp != MinPrice {
		t.Fatalf("expected best bid at MinPrice, got %d", bp)
	}
	if ap, ok := e.BestAsk(); !ok || ap != MaxPrice {
		t.Fatalf("expected best ask at MaxPrice, got %d", ap)
	}

	var execs []Execution
	e.OnExecution = func(x Execution) { execs = append(execs, x) }
	e.Limit(order(Ask, MinPrice, 5, "C"))
	if len(execs) != 2 {
		t.Fatalf("expected a cross at MinPrice, got %d executions", len(execs))
	}
}

// TestExactSizeMatchRestsNothing: an incoming order whose size exactly
// equals the resting head's size consumes it and rests nothing.
func TestExactSizeMatchRestsNothing(t *testing.T) {
	e := NewEngine("XYZ")
	e.Limit(order(Bid, 100, 10, "A"))
	e.Limit(order(Ask, 100, 10, "B"))

	if _, ok := e.BestBid(); ok {
		t.Fatal("expected bid side empty")
	}
	if _, ok := e.BestAsk(); ok {
		t.Fatal("expected ask side empty")
	}
}

// TestUncrossedBookInvariant fuzzes a sequence of orders and asserts
// best_bid < best_ask whenever both sides are non-empty.
func TestUncrossedBookInvariant(t *testing.T) {
	e := NewEngine("XYZ")
	prices := []Price{100, 101, 102, 103, 99, 98, 105}
	for i, p := range prices {
		side := Bid
		if i%2 == 1 {
			side = Ask
		}
		e.Limit(order(side, p, 3, "T"))

		bb, bbok := e.BestBid()
		ba, baok := e.BestAsk()
		if bbok && baok && bb >= ba {
			t.Fatalf("book crossed: best_bid=%d best_ask=%d", bb, ba)
		}
	}
}

// TestAllocsPerRunOnHotPath ensures Limit/Cancel don't allocate once
// the node pool is warmed up, per spec.md §4.1/§5.
func TestAllocsPerRunOnHotPath(t *testing.T) {
	e := NewEngine("XYZ")
	// Warm up: the first few calls may touch cold cache lines but must
	// not heap-allocate regardless, since all storage is pre-sized.
	price := Price(1000)
	avg := testing.AllocsPerRun(1000, func() {
		id := e.Limit(order(Bid, price, 1, "WARM"))
		e.Cancel(id)
	})
	if avg != 0 {
		t.Fatalf("expected zero allocations per Limit+Cancel, got %v", avg)
	}
}

func assertHasExecution(t *testing.T, execs []Execution, side Side, trader string, price Price, size Size) {
	t.Helper()
	want := NewFixedString(trader)
	for _, e := range execs {
		if e.Side == side && e.Trader == want && e.Price == price && e.Size == size {
			return
		}
	}
	t.Fatalf("expected execution {side:%v trader:%s price:%d size:%d} in %v", side, trader, price, size, execs)
}

// snapshot captures enough of the book's observable state to compare
// before/after a submit+cancel round trip.
type bookSnapshot struct {
	bestBid, bestAsk Price
	bidOK, askOK     bool
}

func snapshot(e *Engine) bookSnapshot {
	bb, bok := e.BestBid()
	ba, aok := e.BestAsk()
	return bookSnapshot{bestBid: bb, bestAsk: ba, bidOK: bok, askOK: aok}
}
