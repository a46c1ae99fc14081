// Package lx implements a single-symbol, price-time priority limit order
// matching engine tuned for tight, predictable per-operation latency.
package lx

import "fmt"

// Side identifies which side of the book an order rests on.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "Bid"
	}
	return "Ask"
}

// Price is a fixed-point monetary amount (two implied decimals). The
// engine never does arithmetic on it beyond comparison.
type Price uint32

// Size is a positive share count. Zero is never a legal resting size.
type Size uint64

// OrderID is a monotonically increasing identifier, unique within one
// Engine lifetime.
type OrderID uint64

// StringLen is the fixed width of the opaque Trader/Symbol payloads.
const StringLen = 8

// FixedString is an opaque, fixed-width byte payload copied verbatim
// between orders and execution reports. It is never interpreted by the
// engine.
type FixedString [StringLen]byte

// NewFixedString right-pads (or truncates) s to StringLen bytes.
func NewFixedString(s string) FixedString {
	var f FixedString
	copy(f[:], s)
	return f
}

func (f FixedString) String() string {
	n := len(f)
	for n > 0 && f[n-1] == 0 {
		n--
	}
	return string(f[:n])
}

const (
	// MinPrice and MaxPrice bound the direct-indexed price array on
	// each book side.
	MinPrice Price = 1
	MaxPrice Price = 65535

	// MaxLiveOrders bounds the number of resting orders on one side at
	// any instant.
	MaxLiveOrders = 65536

	// MaxOrders bounds the number of identifiers issued over one
	// init-to-destroy lifetime.
	MaxOrders = 1_000_000
)

// noBid and noAsk are the "side empty" sentinels for the best-price
// cursor: a bid cursor resting below MinPrice, an ask cursor resting
// above MaxPrice, can never be a legal resting price.
const (
	noBid Price = 0
	noAsk Price = 65535 + 1
)

// Order is the host-submitted limit order payload.
type Order struct {
	Symbol FixedString
	Trader FixedString
	Side   Side
	Price  Price
	Size   Size
}

func (o Order) String() string {
	return fmt.Sprintf("{symbol:%s trader:%s side:%v price:%d size:%d}",
		o.Symbol, o.Trader, o.Side, o.Price, o.Size)
}

// Execution reports one counterparty's side of a single trade.
type Execution struct {
	Symbol FixedString
	Trader FixedString
	Side   Side
	Price  Price
	Size   Size
}

func (e Execution) String() string {
	return fmt.Sprintf("{symbol:%s trader:%s side:%v price:%d size:%d}",
		e.Symbol, e.Trader, e.Side, e.Price, e.Size)
}
