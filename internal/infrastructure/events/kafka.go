package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"CityPulse/internal/config"
	"CityPulse/internal/domain"
	"CityPulse/internal/ports"
)

// Event types carried in the "type" field of every message.
const (
	TypeReportSubmitted    = "report.submitted"
	TypeConditionsSnapshot = "conditions.snapshot"
)

type reportEvent struct {
	Type      string        `json:"type"`
	EmittedAt time.Time     `json:"emittedAt"`
	Report    domain.Report `json:"report"`
}

type conditionsEvent struct {
	Type       string                    `json:"type"`
	EmittedAt  time.Time                 `json:"emittedAt"`
	Conditions domain.ConditionsSnapshot `json:"conditions"`
}

// KafkaPublisher writes report and conditions events to Kafka topics.
type KafkaPublisher struct {
	producer        sarama.SyncProducer
	reportsTopic    string
	conditionsTopic string
	now             func() time.Time
}

var (
	_ ports.ReportNotifier     = (*KafkaPublisher)(nil)
	_ ports.ConditionsNotifier = (*KafkaPublisher)(nil)
)

// NewKafkaPublisher connects a synchronous producer to the configured brokers.
func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, cfg), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, cfg config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		producer:        producer,
		reportsTopic:    cfg.ReportsTopic,
		conditionsTopic: cfg.ConditionsTopic,
		now:             time.Now,
	}
}

// NotifyReport publishes a report.submitted event keyed by report id.
// Inline data URI photos are dropped from the event body.
func (p *KafkaPublisher) NotifyReport(_ context.Context, report domain.Report) error {
	if p.reportsTopic == "" {
		return nil
	}
	if strings.HasPrefix(report.ImageURL, "data:") {
		report.ImageURL = ""
	}
	return p.publish(p.reportsTopic, report.ID, reportEvent{
		Type:      TypeReportSubmitted,
		EmittedAt: p.now().UTC(),
		Report:    report,
	})
}

// NotifyConditions publishes a conditions.snapshot event keyed by the snapshot time.
func (p *KafkaPublisher) NotifyConditions(_ context.Context, at time.Time, snapshot domain.ConditionsSnapshot) error {
	if p.conditionsTopic == "" {
		return nil
	}
	return p.publish(p.conditionsTopic, at.UTC().Format(time.RFC3339), conditionsEvent{
		Type:       TypeConditionsSnapshot,
		EmittedAt:  at.UTC(),
		Conditions: snapshot,
	})
}

func (p *KafkaPublisher) publish(topic, key string, event any) error {
	if p.producer == nil {
		return fmt.Errorf("sarama producer is not initialized")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("send to topic %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
