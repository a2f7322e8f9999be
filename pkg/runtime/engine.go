// ruleflow/pkg/runtime/engine.go

package runtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"rulehub/ruleflow/pkg/action"
	"rulehub/ruleflow/pkg/dsl"
	"rulehub/ruleflow/pkg/expr"
	"rulehub/ruleflow/pkg/logging"
	"rulehub/ruleflow/pkg/model"
	"rulehub/ruleflow/pkg/store"
)

// Engine orchestrates rule evaluation: parse each rule's DSL, evaluate its
// conditions against the context, dispatch its actions in order, persist
// the execution record and bump the rule's counters. One batch corresponds
// to one external trigger.
type Engine struct {
	store      store.Store
	dispatcher *action.Dispatcher

	Stats struct {
		TotalBatches     int64
		TotalRules       int64
		TotalActions     int64
		LastExecutionRun time.Time
	}
	statsMutex sync.Mutex

	listeners      []func(model.ExecutionRecord)
	listenersMutex sync.Mutex
}

func NewEngine(st store.Store, dispatcher *action.Dispatcher) *Engine {
	return &Engine{
		store:      st,
		dispatcher: dispatcher,
	}
}

// AddRecordListener registers a callback invoked with every finalized
// execution record. The dashboard uses this for its live feed.
func (e *Engine) AddRecordListener(fn func(model.ExecutionRecord)) {
	e.listenersMutex.Lock()
	e.listeners = append(e.listeners, fn)
	e.listenersMutex.Unlock()
}

// ExecuteRules runs a batch: rules ordered by priority (lower first),
// evaluated sequentially and independently. One rule's failure never stops
// the rest; every rule yields exactly one record. On context cancellation
// no new rule starts and the accumulated results are returned.
func (e *Engine) ExecuteRules(ctx context.Context, rules []model.Rule, ectx model.ExecutionContext, trigger model.TriggeredBy) []model.ExecutionRecord {
	ordered := make([]model.Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	logging.Logger.Info().
		Int("rules", len(ordered)).
		Str("event_type", trigger.EventType).
		Msg("Starting batch execution")

	results := make([]model.ExecutionRecord, 0, len(ordered))
	for _, rule := range ordered {
		if ctx.Err() != nil {
			logging.Logger.Warn().Err(ctx.Err()).Int("completed", len(results)).Msg("Batch cancelled")
			break
		}
		record := e.executeRule(ctx, rule, ectx, trigger)
		results = append(results, record)
	}

	e.statsMutex.Lock()
	e.Stats.TotalBatches++
	e.Stats.TotalRules += int64(len(results))
	for _, r := range results {
		e.Stats.TotalActions += int64(len(r.Actions))
	}
	e.Stats.LastExecutionRun = time.Now()
	e.statsMutex.Unlock()

	return results
}

// executeRule runs the per-rule state machine:
// pending -> running -> success | partial_success | skipped | failed.
func (e *Engine) executeRule(ctx context.Context, rule model.Rule, ectx model.ExecutionContext, trigger model.TriggeredBy) (record model.ExecutionRecord) {
	record = model.ExecutionRecord{
		RuleID:      rule.ID,
		ExecutionID: uuid.NewString(),
		TriggeredBy: trigger,
		StartTime:   time.Now(),
		Status:      model.StatusRunning,
	}

	defer func() {
		if r := recover(); r != nil {
			record.Status = model.StatusFailed
			record.Error = fmt.Sprintf("rule evaluation panicked: %v", r)
			logging.Logger.Error().Str("rule_id", rule.ID).Interface("panic", r).Msg("Recovered rule panic")
		}
		e.finalize(ctx, rule, &record)
	}()

	logging.Logger.Debug().Str("rule_id", rule.ID).Str("rule", rule.Name).Msg("Evaluating rule")

	parsed, err := dsl.Parse(rule.DSL)
	if err != nil {
		record.Status = model.StatusFailed
		record.Error = err.Error()
		logging.LogError(logging.Logger, err)
		return record
	}

	record.Conditions = e.evaluateConditions(parsed.Conditions, ectx)
	if !conditionsPassed(record.Conditions) {
		record.Status = model.StatusSkipped
		return record
	}

	successes := 0
	for _, clause := range parsed.Actions {
		result := e.executeAction(ctx, clause, ectx)
		record.Actions = append(record.Actions, result)
		if result.Success {
			successes++
		}
	}

	if successes > 0 {
		record.Status = model.StatusSuccess
	} else {
		// Conditions passed but nothing landed.
		record.Status = model.StatusPartialSuccess
	}
	return record
}

// evaluateConditions interpolates and evaluates every condition clause.
// Aggregation is a logical AND over all clauses, OR included: the rule
// language parses OR but has never branched on it, and changing that here
// would silently change which rules fire.
func (e *Engine) evaluateConditions(clauses []dsl.ConditionClause, ectx model.ExecutionContext) []model.ConditionResult {
	results := make([]model.ConditionResult, 0, len(clauses))
	for _, clause := range clauses {
		interpolated := expr.Interpolate(clause.Expression, ectx)
		passed, value, err := expr.EvaluateBool(interpolated)

		result := model.ConditionResult{
			Expression:          clause.Expression,
			EvaluatedExpression: interpolated,
			Result:              passed,
			Value:               value,
			EvaluatedAt:         time.Now(),
		}
		if err != nil {
			// A bad clause fails this condition only; siblings still run.
			result.Error = err.Error()
			logging.LogError(logging.Logger, err)
		}
		results = append(results, result)
	}
	return results
}

func conditionsPassed(results []model.ConditionResult) bool {
	for _, r := range results {
		if !r.Result {
			return false
		}
	}
	return true
}

func (e *Engine) executeAction(ctx context.Context, clause dsl.ActionClause, ectx model.ExecutionContext) model.ActionResult {
	config, err := action.ParseExpression(clause.Expression, ectx)
	if err != nil {
		logging.LogError(logging.Logger, err)
		return model.ActionResult{
			ActionType: "unknown",
			Success:    false,
			Error:      err.Error(),
		}
	}
	return e.dispatcher.Execute(ctx, config)
}

// finalize closes out the record, persists it, updates the rule's counters
// and emits the activity entry. Store failures are logged, not propagated;
// an audit write must not fail the batch.
func (e *Engine) finalize(ctx context.Context, rule model.Rule, record *model.ExecutionRecord) {
	record.EndTime = time.Now()
	record.TotalResponseTime = record.EndTime.Sub(record.StartTime).Milliseconds()

	if e.store != nil {
		if err := e.store.CreateExecutionRecord(ctx, record); err != nil {
			logging.Logger.Error().Err(err).Str("rule_id", rule.ID).Msg("Failed to persist execution record")
		}
		outcome := outcomeFor(record.Status)
		execTime := record.EndTime.Sub(record.StartTime)
		if err := e.store.UpdateRulePerformance(ctx, rule.ID, execTime, outcome); err != nil {
			logging.Logger.Error().Err(err).Str("rule_id", rule.ID).Msg("Failed to update rule performance")
		}
		entry := &model.ActivityEntry{
			Type:      "rule_execution",
			RuleID:    rule.ID,
			RuleName:  rule.Name,
			Status:    string(record.Status),
			Message:   activityMessage(rule, record),
			Timestamp: record.EndTime,
		}
		if err := e.store.LogActivity(ctx, entry); err != nil {
			logging.Logger.Error().Err(err).Str("rule_id", rule.ID).Msg("Failed to log activity")
		}
	}

	logging.Logger.Info().
		Str("rule_id", rule.ID).
		Str("execution_id", record.ExecutionID).
		Str("status", string(record.Status)).
		Int64("response_ms", record.TotalResponseTime).
		Msg("Rule execution finished")

	e.listenersMutex.Lock()
	listeners := make([]func(model.ExecutionRecord), len(e.listeners))
	copy(listeners, e.listeners)
	e.listenersMutex.Unlock()
	for _, fn := range listeners {
		fn(*record)
	}
}

func outcomeFor(status model.ExecutionStatus) model.Outcome {
	switch status {
	case model.StatusSuccess:
		return model.OutcomeSuccess
	case model.StatusSkipped:
		return model.OutcomeSkip
	default:
		return model.OutcomeFailure
	}
}

func activityMessage(rule model.Rule, record *model.ExecutionRecord) string {
	switch record.Status {
	case model.StatusSuccess:
		return fmt.Sprintf("Rule %q executed: %d action(s) dispatched", rule.Name, len(record.Actions))
	case model.StatusPartialSuccess:
		return fmt.Sprintf("Rule %q matched but no action succeeded", rule.Name)
	case model.StatusSkipped:
		return fmt.Sprintf("Rule %q skipped: conditions not met", rule.Name)
	default:
		return fmt.Sprintf("Rule %q failed: %s", rule.Name, record.Error)
	}
}

// GetStats snapshots the engine counters for the dashboard.
func (e *Engine) GetStats() map[string]interface{} {
	e.statsMutex.Lock()
	defer e.statsMutex.Unlock()
	return map[string]interface{}{
		"totalBatches":     e.Stats.TotalBatches,
		"totalRules":       e.Stats.TotalRules,
		"totalActions":     e.Stats.TotalActions,
		"lastExecutionRun": e.Stats.LastExecutionRun,
	}
}
