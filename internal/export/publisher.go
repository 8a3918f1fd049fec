// Package export implements the optional sample export surfaces: a NATS
// publisher and a read-only HTTP API.
package export

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/metalgrid/tcpgraph/internal/config"
	"github.com/metalgrid/tcpgraph/internal/model"
)

// Publisher publishes bandwidth samples to a NATS subject as JSON.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to the NATS server.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes a sample to JSON and publishes it to the configured subject.
func (p *Publisher) Publish(sample model.BandwidthSample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
