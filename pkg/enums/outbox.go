package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSubmission   OutboxAggregateType = "submission"
	AggregateEditRequest  OutboxAggregateType = "edit_request"
	AggregateBroadcast    OutboxAggregateType = "broadcast"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSubmission,
	AggregateEditRequest,
	AggregateBroadcast,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventSubmissionApproved  OutboxEventType = "submission_approved"
	EventSubmissionRejected  OutboxEventType = "submission_rejected"
	EventEditRequestApproved OutboxEventType = "edit_request_approved"
	EventEditRequestRejected OutboxEventType = "edit_request_rejected"
	EventBroadcastRequested  OutboxEventType = "broadcast_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSubmissionApproved,
	EventSubmissionRejected,
	EventEditRequestApproved,
	EventEditRequestRejected,
	EventBroadcastRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
