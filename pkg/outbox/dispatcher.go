package outbox

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter leaves Topic unset so every message carries its own.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

type Dispatcher struct {
	log      *slog.Logger
	producer Producer
}

func NewDispatcher(log *slog.Logger, producer Producer) *Dispatcher {
	return &Dispatcher{log: log, producer: producer}
}

func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	msg := kafka.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
			{Key: "event_id", Value: []byte(strconv.FormatUint(event.ID, 10))},
		},
	}
	if err := d.producer.WriteMessages(ctx, msg); err != nil {
		d.log.Error("outbox dispatch failed", "event_id", event.ID, "topic", event.Topic, "error", err)
		return err
	}
	d.log.Debug("outbox dispatched", "event_id", event.ID, "type", event.Type)
	return nil
}
