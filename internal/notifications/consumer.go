package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/pkg/enums"
	"github.com/haneulpark/idolbase-backend/pkg/logger"
	"github.com/haneulpark/idolbase-backend/pkg/outbox"
	"github.com/haneulpark/idolbase-backend/pkg/outbox/idempotency"
	"github.com/haneulpark/idolbase-backend/pkg/outbox/payloads"
)

const moderationNotificationConsumer = "moderation-notifications"

// Consumer watches moderation events and turns decisions into notifications.
// Broadcast requests fan out to every active user through the same service.
type Consumer struct {
	service      Service
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a moderation notification consumer.
func NewConsumer(service Service, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("moderation subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		service:      service,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawEventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawEventType,
	})

	eventType, err := enums.ParseOutboxEventType(rawEventType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, moderationNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, moderationNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope, logCtx context.Context) error {
	switch eventType {
	case enums.EventSubmissionApproved, enums.EventSubmissionRejected,
		enums.EventEditRequestApproved, enums.EventEditRequestRejected:
		var payload payloads.ModerationDecision
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("parse decision payload: %w", err)
		}
		return c.notifySubmitter(ctx, eventType, payload, logCtx)
	case enums.EventBroadcastRequested:
		var payload payloads.Broadcast
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("parse broadcast payload: %w", err)
		}
		return c.fanOutBroadcast(ctx, payload, logCtx)
	default:
		c.logg.Info(logCtx, "event type not handled")
		return nil
	}
}

func (c *Consumer) notifySubmitter(ctx context.Context, eventType enums.OutboxEventType, payload payloads.ModerationDecision, logCtx context.Context) error {
	if payload.SubmittedBy == nil || *payload.SubmittedBy == uuid.Nil {
		c.logg.Info(logCtx, "decision has no submitter to notify")
		return nil
	}

	title, message := decisionCopy(eventType, payload)
	params := CreateParams{
		RecipientID: *payload.SubmittedBy,
		Type:        enums.NotificationTypeSystem,
		Title:       title,
		Message:     message,
	}
	if payload.TargetSlug != "" {
		slug := payload.TargetSlug
		kind := string(payload.Kind)
		params.TargetID = &slug
		params.TargetType = &kind
	}
	if _, err := c.service.Create(ctx, params); err != nil {
		return err
	}
	c.logg.Info(logCtx, "submitter notified of decision")
	return nil
}

func decisionCopy(eventType enums.OutboxEventType, payload payloads.ModerationDecision) (string, string) {
	name := payload.TargetName
	switch eventType {
	case enums.EventSubmissionApproved:
		return "Submission approved", fmt.Sprintf("Your %s submission %q was approved.", payload.Kind, name)
	case enums.EventSubmissionRejected:
		message := fmt.Sprintf("Your %s submission %q was rejected.", payload.Kind, name)
		if payload.ReviewNotes != "" {
			message = fmt.Sprintf("%s Reason: %s", message, payload.ReviewNotes)
		}
		return "Submission rejected", message
	case enums.EventEditRequestApproved:
		return "Edit approved", fmt.Sprintf("Your edit to %q was approved.", name)
	default:
		message := fmt.Sprintf("Your edit to %q was rejected.", name)
		if payload.ReviewNotes != "" {
			message = fmt.Sprintf("%s Reason: %s", message, payload.ReviewNotes)
		}
		return "Edit rejected", message
	}
}

func (c *Consumer) fanOutBroadcast(ctx context.Context, payload payloads.Broadcast, logCtx context.Context) error {
	result, err := c.service.Broadcast(ctx, BroadcastParams{
		Title:   payload.Title,
		Message: payload.Message,
	})
	if err != nil {
		return err
	}
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"recipients": result.Recipients,
		"written":    result.Written,
		"chunks":     result.Chunks,
	})
	if result.Err != nil {
		c.logg.Error(logCtx, "broadcast completed with failed chunks", result.Err)
		return nil
	}
	c.logg.Info(logCtx, "broadcast fanned out")
	return nil
}
