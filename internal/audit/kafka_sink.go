package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
)

// KafkaSink publishes results to the result topic, keyed by payment id so
// redeliveries of a payment land on the same partition.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	service  string
	log      *logger.Logger
}

// NewKafkaProducer creates a sync producer that waits for all in-sync replicas
func NewKafkaProducer(brokers []string, clientID string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

// NewKafkaSink creates a Kafka sink on an existing producer
func NewKafkaSink(producer sarama.SyncProducer, topic, service string, log *logger.Logger) *KafkaSink {
	return &KafkaSink{
		producer: producer,
		topic:    topic,
		service:  service,
		log:      log.Named("kafka_sink"),
	}
}

// Name implements Sink
func (k *KafkaSink) Name() string {
	return "kafka"
}

// RecordPayment implements Sink
func (k *KafkaSink) RecordPayment(ctx context.Context, r *domain.PaymentScreeningResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := NewEvent(k.service, r)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(r.PaymentID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventPaymentScreened)},
			{Key: []byte("event_id"), Value: []byte(event.EventID)},
		},
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", k.topic, err)
	}

	k.log.Debug("screening result published",
		logger.StringField("payment_id", r.PaymentID),
		logger.IntField("partition", int(partition)),
		logger.IntField("offset", int(offset)),
	)
	return nil
}

// Close closes the underlying producer
func (k *KafkaSink) Close() error {
	return k.producer.Close()
}
