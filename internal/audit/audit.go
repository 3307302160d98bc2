// Package audit publishes best-effort activity events. Callers log publish
// errors and carry on; nothing here may block or fail a user operation.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/rs/zerolog/log"
)

// Source is the EventBridge source for every studio event.
const Source = "idea-studio"

// EventLogin is the Type of a login event.
const EventLogin = "Login"

// Event is one audit record.
type Event struct {
	Type  string    `json:"type"`
	User  string    `json:"user"`
	Email string    `json:"email"`
	At    time.Time `json:"at"`
}

// Publisher delivers audit events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// EventBridgeAPI is the subset of *eventbridge.Client used for publishing.
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgePublisher sends events to an EventBridge bus.
type EventBridgePublisher struct {
	client  EventBridgeAPI
	busName string
}

func NewEventBridgePublisher(client EventBridgeAPI, busName string) *EventBridgePublisher {
	return &EventBridgePublisher{client: client, busName: busName}
}

func (p *EventBridgePublisher) Publish(ctx context.Context, event Event) error {
	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	input := &eventbridge.PutEventsInput{
		Entries: []eventbridgetypes.PutEventsRequestEntry{{
			Source:       aws.String(Source),
			DetailType:   aws.String(event.Type),
			Detail:       aws.String(string(detail)),
			EventBusName: aws.String(p.busName),
			Time:         aws.Time(event.At),
		}},
	}

	result, err := p.client.PutEvents(ctx, input)
	if err != nil {
		return fmt.Errorf("PutEvents: %w", err)
	}
	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil || entry.ErrorMessage != nil {
				return fmt.Errorf("PutEvents entry %d failed: %s - %s", i, aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
			}
		}
		return fmt.Errorf("PutEvents: %d entries failed", result.FailedEntryCount)
	}

	log.Debug().Str("eventType", event.Type).Str("bus", p.busName).Msg("Audit event published")
	return nil
}
