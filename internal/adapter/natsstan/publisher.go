package natsstan

import (
	"encoding/json"
	"fmt"

	stan "github.com/nats-io/stan.go"

	"github.com/example/courses-service/internal/domain"
)

// Publisher writes envelopes to a subject. Used by tooling that feeds the
// courses queue.
type Publisher struct {
	conn stan.Conn
}

func NewPublisher(clusterID, clientID, url string) (*Publisher, error) {
	conn, err := stan.Connect(clusterID, clientID, stan.NatsURL(url))
	if err != nil {
		return nil, fmt.Errorf("stan connect: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

func (p *Publisher) Publish(subject string, env domain.Envelope) (int, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return 0, err
	}
	if err := p.conn.Publish(subject, raw); err != nil {
		return 0, fmt.Errorf("publish %s: %w", subject, err)
	}
	return len(raw), nil
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}
