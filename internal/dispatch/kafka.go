package dispatch

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/triagestack/triage-engine/internal/models"
	"github.com/triagestack/triage-engine/internal/utils"
)

// KafkaPublisher fans critical alerts out to a Kafka topic for in-hospital
// consumers (dashboards, paging bridges).
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaPublisher connects a producer to the configured brokers.
func NewKafkaPublisher(brokers, topic string) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, utils.NewAppError("kafka.connect", "create producer", err)
	}
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

// Publish sends the record as JSON keyed by decision ID and waits for the
// broker's delivery report.
func (p *KafkaPublisher) Publish(ctx context.Context, record models.DecisionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return utils.NewAppError("kafka.publish", "encode alert", err)
	}

	delivery := make(chan kafka.Event, 1)
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(record.ID),
		Value:          payload,
	}
	if err := p.producer.Produce(msg, delivery); err != nil {
		return utils.NewAppError("kafka.publish", "produce alert", err)
	}

	select {
	case ev := <-delivery:
		if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return utils.NewAppError("kafka.publish", "delivery failed", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes outstanding messages and releases the producer.
func (p *KafkaPublisher) Close() {
	p.producer.Flush(1000)
	p.producer.Close()
}
