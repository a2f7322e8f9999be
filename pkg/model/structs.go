// ruleflow/pkg/model/structs.go
package model

import "time"

// RuleStatus is the lifecycle state of a stored rule.
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"
	RuleStatusInactive RuleStatus = "inactive"
	RuleStatusDraft    RuleStatus = "draft"
)

// Rule is the persisted rule record. The engine reads it and reports
// counter deltas back through the store; it never mutates the record itself.
type Rule struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	DSL            string     `json:"dsl"`
	Status         RuleStatus `json:"status"`
	Priority       int        `json:"priority"`
	Tags           []string   `json:"tags,omitempty"`
	ExecutionCount int64      `json:"executionCount"`
	SuccessRate    float64    `json:"successRate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ExecutionContext holds the named top-level objects (customer, order,
// product, eventData, ...) a rule evaluates against. Read-only for the
// duration of a single rule evaluation.
type ExecutionContext map[string]interface{}

// ExecutionStatus is the terminal (or in-flight) state of one
// rule-execution attempt.
type ExecutionStatus string

const (
	StatusRunning        ExecutionStatus = "running"
	StatusSuccess        ExecutionStatus = "success"
	StatusPartialSuccess ExecutionStatus = "partial_success"
	StatusSkipped        ExecutionStatus = "skipped"
	StatusFailed         ExecutionStatus = "failed"
)

// Outcome feeds the rule performance counters. Skips increment the
// execution count but stay out of the success-rate denominator.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeSkip    Outcome = "skip"
)

// ConditionResult records the evaluation of a single condition clause.
type ConditionResult struct {
	Expression          string      `json:"expression"`
	EvaluatedExpression string      `json:"evaluatedExpression"`
	Result              bool        `json:"result"`
	Value               interface{} `json:"value,omitempty"`
	Error               string      `json:"error,omitempty"`
	EvaluatedAt         time.Time   `json:"evaluatedAt"`
}

// ActionResult records one dispatched action.
type ActionResult struct {
	ActionID      string                 `json:"actionId"`
	ActionType    string                 `json:"actionType"`
	Success       bool                   `json:"success"`
	ExecutionTime int64                  `json:"executionTime"` // milliseconds
	Data          map[string]interface{} `json:"data,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

// TriggeredBy describes the event that started a batch.
type TriggeredBy struct {
	EventType string                 `json:"eventType"`
	EventData map[string]interface{} `json:"eventData,omitempty"`
}

// ExecutionRecord is the append-only audit entry for one rule-execution
// attempt. Created at evaluation start, finalized at end, persisted once.
type ExecutionRecord struct {
	RuleID            string            `json:"ruleId"`
	ExecutionID       string            `json:"executionId"`
	TriggeredBy       TriggeredBy       `json:"triggeredBy"`
	StartTime         time.Time         `json:"startTime"`
	EndTime           time.Time         `json:"endTime"`
	Status            ExecutionStatus   `json:"status"`
	TotalResponseTime int64             `json:"totalResponseTime"` // milliseconds
	Conditions        []ConditionResult `json:"conditions"`
	Actions           []ActionResult    `json:"actions"`
	Error             string            `json:"error,omitempty"`
}

// ActivityEntry is one line of the activity log.
type ActivityEntry struct {
	Type      string    `json:"type"`
	RuleID    string    `json:"ruleId,omitempty"`
	RuleName  string    `json:"ruleName,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TriggerEvent is the inbound message that starts a batch execution. Entity
// IDs are resolved against the store to build the ExecutionContext.
type TriggerEvent struct {
	EventType  string                 `json:"eventType"`
	CustomerID string                 `json:"customerId,omitempty"`
	OrderID    string                 `json:"orderId,omitempty"`
	ProductID  string                 `json:"productId,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}
