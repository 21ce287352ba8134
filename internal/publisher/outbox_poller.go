// Package publisher relays outbox events written by checkout to Kafka.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/repository"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

// MessageWriter is the subset of *kafka.Writer the poller uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
}

type OutboxPoller struct {
	repo      repository.OutboxRepository
	writer    MessageWriter
	breaker   *gobreaker.CircuitBreaker[struct{}]
	eventTick time.Duration
	batchSize int
	log       *slog.Logger
}

func NewOutboxPoller(repo repository.OutboxRepository, writer MessageWriter, eventTick time.Duration, batchSize int) *OutboxPoller {
	log := slog.Default().With("component", "outbox_poller")
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "kafka-outbox",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &OutboxPoller{
		repo:      repo,
		writer:    writer,
		breaker:   breaker,
		eventTick: eventTick,
		batchSize: batchSize,
		log:       log,
	}
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// processUnpublishedEvents publishes one batch and returns how many events
// were marked processed. Events that fail stay in the outbox for the next
// tick.
func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) int {
	events, err := p.repo.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		p.log.Error("failed to fetch events", "error", err)
		return 0
	}

	processed := 0
	for _, event := range events {
		errPublish := p.publishToKafka(ctx, event)
		if errors.Is(errPublish, gobreaker.ErrOpenState) {
			p.log.Warn("kafka circuit open, postponing batch", "pending", len(events)-processed)
			return processed
		}
		if errPublish != nil {
			p.log.Error("failed to publish event", "event_id", event.ID, "error", errPublish)
			continue
		}

		if errMark := p.repo.MarkEventAsProcessed(ctx, event.ID); errMark != nil {
			p.log.Error("failed to mark event as processed", "event_id", event.ID, "error", errMark)
			continue
		}
		processed++
	}
	return processed
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *domain.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id keeps one order's events ordered
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	return err
}
