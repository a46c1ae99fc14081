// Command bench replays a synthetic order feed directly against
// pkg/lx.Engine and reports mean/stddev per-operation latency — the
// optimization target named in spec.md §1. The feed shape and the
// scoring idea (minimize mean and standard deviation of latency) are
// grounded in the QuantCup scoring harness this spec's core algorithm
// traces back to.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/lxmatch/engine/pkg/lx"
)

func main() {
	orders := flag.Int("orders", 1_000_000, "number of synthetic limit orders to submit")
	cancelRate := flag.Float64("cancel-rate", 0.1, "fraction of issued order ids cancelled after the whole feed is submitted")
	seed := flag.Int64("seed", 1, "feed PRNG seed")
	flag.Parse()

	feed, cancels := synthesize(*orders, *cancelRate, *seed)

	engine := lx.NewEngine("XYZ")
	engine.OnExecution = func(lx.Execution) {}

	var stats welford
	for _, o := range feed {
		start := time.Now()
		id := engine.Limit(o)
		stats.add(float64(time.Since(start)))
		cancels.noteIssued(id)
	}
	for _, id := range cancels.sample() {
		start := time.Now()
		engine.Cancel(id)
		stats.add(float64(time.Since(start)))
	}

	mean := stats.Mean()
	sd := stats.stddev()
	fmt.Printf("operations: %d\n", stats.n)
	fmt.Printf("mean(latency) = %.1fns, sd(latency) = %.1fns\n", mean, sd)
	fmt.Printf("score (lower is better) = %.1f\n", 0.5*(mean+sd))
}

// welford accumulates mean/variance in one pass with O(1) memory, per
// Welford's online algorithm — no third-party statistics library in
// the retrieval pack improves on three lines of arithmetic here.
type welford struct {
	n    int64
	mean float64
	m2   float64
}

func (w *welford) add(x float64) {
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	delta2 := x - w.mean
	w.m2 += delta * delta2
}

func (w *welford) stddev() float64 {
	if w.n < 2 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.n))
}

func (w *welford) Mean() float64 { return w.mean }

// cancelTracker keeps a random subset (each id with probability rate)
// of the ids Limit issued so the harness can cancel them after the
// feed, exercising the cancel path alongside limit. Ids whose orders
// were fully filled are kept too; cancelling them is a no-op.
type cancelTracker struct {
	rate float64
	rng  *rand.Rand
	ids  []lx.OrderID
}

func (c *cancelTracker) noteIssued(id lx.OrderID) {
	if c.rng.Float64() < c.rate {
		c.ids = append(c.ids, id)
	}
}

func (c *cancelTracker) sample() []lx.OrderID {
	return c.ids
}

func synthesize(n int, cancelRate float64, seed int64) ([]lx.Order, *cancelTracker) {
	rng := rand.New(rand.NewSource(seed))
	feed := make([]lx.Order, n)

	const mid = 30000
	const spread = 2000

	for i := 0; i < n; i++ {
		side := lx.Bid
		if rng.Intn(2) == 1 {
			side = lx.Ask
		}
		offset := rng.Intn(spread) - spread/2
		price := lx.Price(mid + offset)
		if price < lx.MinPrice {
			price = lx.MinPrice
		}
		if price > lx.MaxPrice {
			price = lx.MaxPrice
		}

		feed[i] = lx.Order{
			Symbol: lx.NewFixedString("XYZ"),
			Trader: lx.NewFixedString(fmt.Sprintf("T%06d", rng.Intn(1000))),
			Side:   side,
			Price:  price,
			Size:   lx.Size(1 + rng.Intn(100)),
		}
	}

	return feed, &cancelTracker{rate: cancelRate, rng: rng}
}
