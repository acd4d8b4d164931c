package kafka

import (
	"context"
	"encoding/json"

	"github.com/musecrm/museflow/pkg/domain"
	xe "github.com/musecrm/museflow/pkg/errors"
	"github.com/musecrm/museflow/pkg/events"
	"github.com/segmentio/kafka-go"
)

// Writer is the part of *kafka.Writer used by Notifier.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Notifier publishes events to a kafka topic, keyed by entity id.
//
// Events on the same entity go to the same partition, so they keep their order.
type Notifier struct {
	writer Writer
}

var _ events.Notifier = &Notifier{}

func New(w Writer) *Notifier {
	return &Notifier{writer: w}
}

// NewWriter connects to brokers for topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
}

func (n *Notifier) Notify(ctx context.Context, exec domain.Execution) error {
	body, err := json.Marshal(events.NewEvent(exec))
	if err != nil {
		return xe.Wrap(err)
	}
	if err := n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(exec.Entity.Id),
		Value: body,
	}); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}
