// Package report translates the engine's opaque, integer fixed-point
// execution records and price/size pairs into decimal-formatted,
// JSON-tagged structs for external consumers (the market-data feed and
// the execution bus; the trade journal stores lx.Execution in its own
// binary encoding). The translation happens once, at this boundary;
// pkg/lx itself never imports shopspring/decimal or encoding/json.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lxmatch/engine/pkg/lx"
)

// priceScale matches lx.Price's two implied decimal places.
const priceScale = 100

// Execution is the external, human-readable view of an lx.Execution.
type Execution struct {
	Symbol    string          `json:"symbol"`
	Trader    string          `json:"trader"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Size      uint64          `json:"size"`
	Timestamp time.Time       `json:"timestamp"`
}

// FromExecution converts an engine execution report for external
// delivery, stamping it with the wall-clock time it left the engine
// (the core itself carries no timestamps; spec.md treats arrival order,
// not wall-clock time, as authoritative for priority).
func FromExecution(x lx.Execution) Execution {
	return Execution{
		Symbol:    x.Symbol.String(),
		Trader:    x.Trader.String(),
		Side:      x.Side.String(),
		Price:     decimal.New(int64(x.Price), 0).Div(decimal.New(priceScale, 0)),
		Size:      uint64(x.Size),
		Timestamp: time.Now(),
	}
}

// Depth is the external view of the top price levels on both sides of
// the book, used by the market-data feed.
type Depth struct {
	Symbol string       `json:"symbol"`
	Bids   []PriceLevel `json:"bids"`
	Asks   []PriceLevel `json:"asks"`
}

// PriceLevel is one decimal-formatted price/size pair.
type PriceLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  uint64          `json:"size"`
}

// NewPriceLevel converts an internal price/size pair for external
// reporting.
func NewPriceLevel(price lx.Price, size lx.Size) PriceLevel {
	return PriceLevel{
		Price: decimal.New(int64(price), 0).Div(decimal.New(priceScale, 0)),
		Size:  uint64(size),
	}
}
