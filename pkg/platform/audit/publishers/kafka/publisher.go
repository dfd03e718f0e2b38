// Package kafka provides an audit Emitter that publishes events to Kafka,
// one topic per category so retention policies can differ.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	audit "convoy/pkg/platform/audit"
)

// Producer is the narrow produce interface satisfied by
// internal/platform/kafka.Producer.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// Topics by audit category. Compliance events get the longest retention.
const (
	TopicCompliance = "convoy.audit.compliance"
	TopicSecurity   = "convoy.audit.security"
	TopicOperations = "convoy.audit.operations"
)

type Publisher struct {
	producer Producer
}

func NewPublisher(producer Producer) *Publisher {
	return &Publisher{producer: producer}
}

// payload is the JSON structure published to Kafka. Field names are stable;
// consumers deserialize by name.
type payload struct {
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	OrgID     string `json:"org_id,omitempty"`
	DriverID  string `json:"driver_id,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Action    string `json:"action"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Emit publishes the event to the topic matching its category. The driver id
// is the partition key so a driver's trail stays ordered.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	body := payload{
		Category:  string(category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		Decision:  event.Decision,
		Reason:    event.Reason,
		ActorID:   event.ActorID,
		RequestID: event.RequestID,
	}
	if !event.OrgID.IsNil() {
		body.OrgID = event.OrgID.String()
	}
	if !event.DriverID.IsNil() {
		body.DriverID = event.DriverID.String()
	}

	value, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	return p.producer.Produce(ctx, topicFor(category), []byte(body.DriverID), value)
}

func topicFor(category audit.EventCategory) string {
	switch category {
	case audit.CategoryCompliance:
		return TopicCompliance
	case audit.CategorySecurity:
		return TopicSecurity
	default:
		return TopicOperations
	}
}
