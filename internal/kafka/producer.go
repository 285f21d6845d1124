package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/urocare/clinic/internal/model"
)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes intake events to a topic, keyed by table so events of one
// table keep their order.
type Publisher struct {
	w messageWriter
}

func NewPublisherFromConfig(c Config) *Publisher {
	bt := c.BatchTimeout
	if bt <= 0 {
		bt = 50 * time.Millisecond
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        c.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: bt,
		RequiredAcks: kafka.RequireOne,
	}
	return &Publisher{w: w}
}

func (p *Publisher) Publish(ctx context.Context, ev model.IntakeEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal intake event: %w", err)
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Table.String()),
		Value: b,
		Time:  ev.At,
	})
}

func (p *Publisher) Close() error { return p.w.Close() }

// DecodeEvent parses a message written by Publisher.
func DecodeEvent(m Message) (model.IntakeEvent, error) {
	var ev model.IntakeEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		return model.IntakeEvent{}, fmt.Errorf("decode intake event: %w", err)
	}
	if ev.ID == "" {
		return model.IntakeEvent{}, fmt.Errorf("decode intake event: missing id")
	}
	return ev, nil
}
