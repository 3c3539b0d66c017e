package marketdatapublisher

import (
	"context"
	"encoding/json"

	marketdatav1 "github.com/muhammadchandra19/exchange-engine/internal/domain/marketdata/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaOptions configures the Kafka sink.
type KafkaOptions struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher writes events to one Kafka topic keyed by market, so a
// market's events stay ordered within their partition.
type KafkaPublisher struct {
	writer messageWriter
	logger *logger.Logger
}

// NewKafkaPublisher creates a new Kafka publisher for market-data events.
func NewKafkaPublisher(options KafkaOptions, log *logger.Logger) *KafkaPublisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  options.Brokers,
		Topic:    options.Topic,
		Balancer: &kafka.Hash{},
	})

	return newKafkaPublisher(kafkaWriter, log)
}

func newKafkaPublisher(writer messageWriter, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		logger: log,
	}
}

var _ marketdatav1.Publisher = (*KafkaPublisher)(nil)

// Publish writes the events as one batch.
func (p *KafkaPublisher) Publish(ctx context.Context, events []marketdatav1.Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return errors.NewTracer("event_marshal_error").Wrap(err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.Market),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(event.Type)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "write_market_data"},
			logger.Field{Key: "count", Value: len(msgs)},
		)
		return errors.WrapErrorDetails(err, "failed to write market data to kafka", errors.TransportError, "kafka")
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
