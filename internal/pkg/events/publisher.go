// Package events publishes domain events about memberships, attendance and
// support tickets for downstream consumers (notifications, analytics).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Type names a domain event
type Type string

const (
	MembershipSubmitted Type = "membership.submitted"
	MembershipApproved  Type = "membership.approved"
	MembershipAdded     Type = "membership.added"
	MembershipUpdated   Type = "membership.updated"
	MembershipRemoved   Type = "membership.removed"

	EventCreated Type = "event.created"
	EventUpdated Type = "event.updated"
	EventDeleted Type = "event.deleted"
	EventJoined  Type = "event.joined"
	EventLeft    Type = "event.left"

	MessageCreated       Type = "message.created"
	MessageRead          Type = "message.read"
	MessageStatusChanged Type = "message.status_changed"
	MessageResponded     Type = "message.responded"
	MessageNoteAdded     Type = "message.note_added"
	MessagePrioritySet   Type = "message.priority_set"

	ClubCreated Type = "club.created"
	ClubUpdated Type = "club.updated"
	ClubDeleted Type = "club.deleted"
)

// Event is the envelope written to the broker
type Event struct {
	ID         string      `json:"id"`
	Type       Type        `json:"type"`
	ClubID     int64       `json:"clubId"`
	EntityID   int64       `json:"entityId"`
	ActorID    int64       `json:"actorId,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload,omitempty"`
}

// New builds an event with a fresh id and timestamp
func New(eventType Type, clubID, entityID, actorID int64, payload interface{}) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		ClubID:     clubID,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Key partitions events by club so one club's events stay ordered
func (e Event) Key() string {
	return strconv.FormatInt(e.ClubID, 10)
}

// Publisher delivers domain events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer used here
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka publisher
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher writes events as JSON to a Kafka topic
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher creates a synchronous publisher that waits for all
// in-sync replicas
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, topic: cfg.Topic}, nil
}

// Publish implements Publisher
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Type, p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func encode(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode event %s: %w", event.Type, err)
	}
	return kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "event-id", Value: []byte(event.ID)},
		},
		Time: event.OccurredAt,
	}, nil
}

// LogPublisher writes events to the log instead of a broker
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements Publisher
func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info().
		Str("eventID", event.ID).
		Str("type", string(event.Type)).
		Int64("clubID", event.ClubID).
		Int64("entityID", event.EntityID).
		Int64("actorID", event.ActorID).
		Msg("Domain event")
	return nil
}

// Close implements Publisher
func (p *LogPublisher) Close() error { return nil }

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
