// Package journal durably appends every execution report to a Pebble
// key-value store, keyed by a monotonic sequence number. This is an
// external collaborator, not part of the engine's own lifecycle:
// spec.md §5/§7 forbid persistence inside the core, but nothing stops
// a host from archiving what the core reports for audit or replay.
package journal

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/lxmatch/engine/pkg/lx"
)

// Journal durably appends lx.Execution records.
type Journal struct {
	db  *pebble.DB
	seq uint64
}

// Open opens (or creates) a Pebble store at dir.
func Open(dir string) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{DisableWAL: false})
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", dir, err)
	}
	// Resume after the last record so a reopened store keeps appending.
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: []byte("exec/"), UpperBound: []byte("exec/~")})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: new iterator: %w", err)
	}
	var seq uint64
	if iter.Last() {
		seq, err = parseKey(iter.Key())
	}
	iter.Close()
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db, seq: seq}, nil
}

// Close closes the underlying store.
func (j *Journal) Close() error {
	return j.db.Close()
}

// record is the fixed-width on-disk encoding of one execution:
// [side:1][price:4][size:8][trader:8][symbol:8].
const recordLen = 1 + 4 + 8 + lx.StringLen + lx.StringLen

func encodeRecord(x lx.Execution) []byte {
	buf := make([]byte, recordLen)
	buf[0] = byte(x.Side)
	binary.BigEndian.PutUint32(buf[1:5], uint32(x.Price))
	binary.BigEndian.PutUint64(buf[5:13], uint64(x.Size))
	copy(buf[13:13+lx.StringLen], x.Trader[:])
	copy(buf[13+lx.StringLen:], x.Symbol[:])
	return buf
}

func decodeRecord(b []byte) (lx.Execution, error) {
	if len(b) != recordLen {
		return lx.Execution{}, fmt.Errorf("journal: invalid record length %d", len(b))
	}
	var x lx.Execution
	x.Side = lx.Side(b[0])
	x.Price = lx.Price(binary.BigEndian.Uint32(b[1:5]))
	x.Size = lx.Size(binary.BigEndian.Uint64(b[5:13]))
	copy(x.Trader[:], b[13:13+lx.StringLen])
	copy(x.Symbol[:], b[13+lx.StringLen:])
	return x, nil
}

// Append durably writes x under the next sequence number.
func (j *Journal) Append(x lx.Execution) error {
	j.seq++
	return j.db.Set(keyFor(j.seq), encodeRecord(x), pebble.Sync)
}

// Scan calls fn for every journaled execution in sequence order.
func (j *Journal) Scan(fn func(seq uint64, x lx.Execution) error) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("exec/"),
		UpperBound: []byte("exec/~"),
	})
	if err != nil {
		return fmt.Errorf("journal: new iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		x, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(seq, x); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("exec/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("exec/"))), "%d", &seq)
	return seq, err
}
