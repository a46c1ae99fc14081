// Package bus fans execution reports out to external consumers over
// NATS. This is the "downstream consumer" hook spec.md §1 explicitly
// defers outside the matching core (risk, reporting, clearing): the
// core never imports this package, the host does.
package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lxmatch/engine/pkg/report"
)

// Publisher publishes execution reports to a per-symbol NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to natsURL and prepares to publish executions
// for symbol on "orders.<symbol>.executions".
func NewPublisher(natsURL, symbol string) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("bus: connect to nats: %w", err)
	}
	return &Publisher{
		nc:      nc,
		subject: fmt.Sprintf("orders.%s.executions", symbol),
	}, nil
}

// Publish sends one execution report. Errors are returned rather than
// swallowed: unlike the engine's core, this boundary crosses the
// network and callers are expected to handle delivery failures.
func (p *Publisher) Publish(x report.Execution) error {
	data, err := json.Marshal(x)
	if err != nil {
		return fmt.Errorf("bus: marshal execution: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("bus: publish execution: %w", err)
	}
	return nil
}

// Close drains and closes the underlying NATS connection.
func (p *Publisher) Close() {
	p.nc.Drain()
}
