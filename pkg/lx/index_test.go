package lx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderIndexPutGetRemove(t *testing.T) {
	idx := newOrderIndex()

	_, ok := idx.get(42)
	assert.False(t, ok, "expected unknown id to miss")

	idx.put(42, Bid, 100, 7)
	loc, ok := idx.get(42)
	assert.True(t, ok)
	assert.Equal(t, Bid, loc.side)
	assert.Equal(t, Price(100), loc.price)
	assert.Equal(t, nodeHandle(7), loc.node)

	idx.remove(42)
	_, ok = idx.get(42)
	assert.False(t, ok, "expected removed id to miss")
}
