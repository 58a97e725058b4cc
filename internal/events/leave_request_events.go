package events

import "time"

const LeaveRequestLifecycleTopic = "leave.request.lifecycle.v1"

const (
	EventTypeLeaveRequestCreated     = "leave_request.created"
	EventTypeLeaveRequestAdjudicated = "leave_request.adjudicated"
)

const AggregateTypeLeaveRequest = "leave_request"

type LeaveRequestCreatedEvent struct {
	EventType      string    `json:"event_type"`
	LeaveRequestID uint64    `json:"leave_request_id"`
	UserID         uint64    `json:"user_id"`
	PolicyID       uint64    `json:"policy_id"`
	LeaveType      string    `json:"leave_type"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	DaysDebited    int       `json:"days_debited"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type LeaveRequestAdjudicatedEvent struct {
	EventType      string    `json:"event_type"`
	LeaveRequestID uint64    `json:"leave_request_id"`
	UserID         uint64    `json:"user_id"`
	Status         string    `json:"status"`
	ApproverID     *uint64   `json:"approver_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
