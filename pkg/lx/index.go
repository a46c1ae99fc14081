package lx

// locator resolves an OrderID to the (side, price, node) needed to
// unlink it in O(1). A flat array indexed directly by id is the
// intended shape given the bounded total-order count (spec.md §4.3).
type locator struct {
	side  Side
	price Price
	node  nodeHandle
	live  bool
}

// orderIndex is a direct lookup table from identifier to locator. It
// holds exactly one entry per currently-resting order (invariant 6).
// The backing slice is sized once at Init and never grown, so lookups
// never allocate.
type orderIndex struct {
	table []locator
}

func newOrderIndex() orderIndex {
	return orderIndex{table: make([]locator, MaxOrders+1)}
}

func (idx *orderIndex) put(id OrderID, side Side, price Price, h nodeHandle) {
	idx.table[id] = locator{side: side, price: price, node: h, live: true}
}

func (idx *orderIndex) get(id OrderID) (locator, bool) {
	if int(id) >= len(idx.table) {
		return locator{}, false
	}
	loc := idx.table[id]
	return loc, loc.live
}

func (idx *orderIndex) remove(id OrderID) {
	idx.table[id] = locator{}
}
