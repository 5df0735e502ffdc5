package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/example/cart-checkout-service/models"
)

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// SendCheckoutEvent publishes the event keyed by user id so events for
// one user stay ordered within a partition.
func (p *Producer) SendCheckoutEvent(event models.CheckoutEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
	}
	return p.writer.WriteMessages(context.Background(), msg)
}

func (p *Producer) Close() {
	_ = p.writer.Close()
}
