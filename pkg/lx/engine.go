package lx

// Engine is the single-symbol, single-threaded limit order matching
// engine. All state is exclusively owned by whichever goroutine calls
// its methods for the engine's lifetime (spec.md §5): there are no
// internal locks, no internal goroutines, and no allocation once Init
// has warmed up the node pool.
//
// OnExecution is invoked twice per trade, once per counterparty, inline
// from within Limit. It must not call back into Limit, Cancel, Init, or
// Destroy.
type Engine struct {
	OnExecution func(Execution)

	symbol FixedString

	bids bookSide
	asks bookSide

	// nodes is the pre-sized arena backing both sides' price-level
	// queues. Handle 0 is reserved to mean "no node."
	nodes    []node
	freeHead nodeHandle

	index orderIndex

	nextID OrderID
}

// maxNodes bounds the arena: at most MaxLiveOrders resting on each
// side, plus one reserved zero handle.
const maxNodes = 2*MaxLiveOrders + 1

// NewEngine allocates a fresh, initialized engine for symbol.
func NewEngine(symbol string) *Engine {
	e := &Engine{}
	e.Init(symbol)
	return e
}

// Init allocates all fixed-size structures and resets the engine to an
// empty book with no live orders. The next identifier returned by Limit
// is 1.
func (e *Engine) Init(symbol string) {
	e.symbol = NewFixedString(symbol)
	e.bids = newBookSide(Bid)
	e.asks = newBookSide(Ask)
	e.index = newOrderIndex()
	e.nextID = 1

	e.nodes = make([]node, maxNodes)
	for i := 1; i < maxNodes-1; i++ {
		e.nodes[i].next = nodeHandle(i + 1)
	}
	e.freeHead = 1
}

// Destroy releases all dynamically-acquired resources. A subsequent
// Init yields a state indistinguishable from first start.
func (e *Engine) Destroy() {
	e.nodes = nil
	e.index = orderIndex{}
	e.bids = bookSide{}
	e.asks = bookSide{}
	e.nextID = 0
}

func (e *Engine) allocNode() nodeHandle {
	h := e.freeHead
	e.freeHead = e.nodes[h].next
	n := &e.nodes[h]
	n.next = 0
	n.prev = 0
	n.inUse = true
	return h
}

func (e *Engine) freeNode(h nodeHandle) {
	n := &e.nodes[h]
	n.inUse = false
	n.next = e.freeHead
	n.prev = 0
	e.freeHead = h
}

func (e *Engine) sideOf(s Side) *bookSide {
	if s == Bid {
		return &e.bids
	}
	return &e.asks
}

func opposite(s Side) Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Limit submits a new limit order, matching it against the resting
// book and returning its freshly-allocated identifier. The identifier
// is issued unconditionally, whether or not the order ends up resting.
func (e *Engine) Limit(order Order) OrderID {
	id := e.nextID
	e.nextID++

	remaining := order.Size
	opp := e.sideOf(opposite(order.Side))

	for remaining > 0 && opp.crosses(order.Side, order.Price) {
		bp := opp.bestPrice()
		q := opp.queueAt(bp)
		h := q.peekHead()
		resting := &e.nodes[h]

		traded := remaining
		if resting.size < traded {
			traded = resting.size
		}

		e.report(order, resting, bp, traded)

		remaining -= traded
		resting.size -= traded

		if resting.size == 0 {
			popHead(e.nodes, q)
			e.index.remove(resting.id)
			e.freeNode(h)
			if q.empty() {
				opp.advanceBest()
			}
		}
	}

	if remaining > 0 {
		h := e.allocNode()
		n := &e.nodes[h]
		n.id = id
		n.trader = order.Trader
		n.symbol = order.Symbol
		n.size = remaining

		side := e.sideOf(order.Side)
		side.rest(e.nodes, order.Price, h)
		e.index.put(id, order.Side, order.Price, h)
	}

	return id
}

// report emits the paired execution callbacks for a single match
// between the incoming order and a resting node, at the resting
// order's price (the passive side sets the price).
func (e *Engine) report(incoming Order, resting *node, price Price, size Size) {
	if e.OnExecution == nil {
		return
	}

	bidExec := Execution{Symbol: incoming.Symbol, Price: price, Size: size, Side: Bid}
	askExec := Execution{Symbol: incoming.Symbol, Price: price, Size: size, Side: Ask}

	if incoming.Side == Bid {
		bidExec.Trader = incoming.Trader
		askExec.Trader = resting.trader
		askExec.Symbol = resting.symbol
	} else {
		askExec.Trader = incoming.Trader
		bidExec.Trader = resting.trader
		bidExec.Symbol = resting.symbol
	}

	e.OnExecution(bidExec)
	e.OnExecution(askExec)
}

// Cancel removes a resting order by identifier. Cancelling an unknown
// or already-consumed identifier is a silent no-op. No execution
// report is emitted.
func (e *Engine) Cancel(id OrderID) {
	loc, ok := e.index.get(id)
	if !ok {
		return
	}

	side := e.sideOf(loc.side)
	q := side.queueAt(loc.price)
	unlink(e.nodes, q, loc.node)
	e.index.remove(id)
	e.freeNode(loc.node)

	if q.empty() && side.bestPrice() == loc.price {
		side.advanceBest()
	}
}

// BestBid returns the current best bid price and whether the bid side
// is non-empty.
func (e *Engine) BestBid() (Price, bool) {
	return e.bids.bestPrice(), !e.bids.empty()
}

// BestAsk returns the current best ask price and whether the ask side
// is non-empty.
func (e *Engine) BestAsk() (Price, bool) {
	return e.asks.bestPrice(), !e.asks.empty()
}

// Depth reports, for one side and price, the number of resting shares
// and orders. It walks the queue and is intended for periodic
// market-data snapshots, not the hot path.
func (e *Engine) Depth(side Side, price Price) (size Size, count int) {
	q := e.sideOf(side).queueAt(price)
	for h := q.peekHead(); h != 0; h = e.nodes[h].next {
		size += e.nodes[h].size
		count++
	}
	return size, count
}
