// ruleflow/e2e_test.go
package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rulehub/ruleflow/pkg/action"
	"rulehub/ruleflow/pkg/integrations"
	"rulehub/ruleflow/pkg/model"
	"rulehub/ruleflow/pkg/runtime"
	"rulehub/ruleflow/pkg/store"
)

func setupE2E(t *testing.T) (*miniredis.Miniredis, *store.RedisStore, *action.MockIntegration, *runtime.Engine) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	redisStore := store.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: s.Addr()}))
	mock := action.NewMockIntegration()
	engine := runtime.NewEngine(redisStore, action.NewDispatcher(mock.All()))
	return s, redisStore, mock, engine
}

func TestEndToEnd(t *testing.T) {
	s, redisStore, mock, engine := setupE2E(t)
	ctx := context.Background()

	require.NoError(t, redisStore.SaveRule(ctx, &model.Rule{
		ID:     "r1",
		Name:   "premium big order",
		DSL:    "WHEN order.total > 1000\nAND customer.tier == \"premium\"\nTHEN send_email(to: \"sales@x.com\", subject: \"Alert\")",
		Status: model.RuleStatusActive,
	}))
	s.Set("order:o1", `{"total": 1500}`)
	s.Set("customer:c1", `{"tier": "premium"}`)

	rules, err := redisStore.GetActiveRules(ctx, store.Filter{}, 0)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	ectx, trigger := runtime.BuildContext(ctx, redisStore, model.TriggerEvent{
		EventType:  "order_placed",
		OrderID:    "o1",
		CustomerID: "c1",
	})
	results := engine.ExecuteRules(ctx, rules, ectx, trigger)

	require.Len(t, results, 1)
	record := results[0]
	assert.Equal(t, model.StatusSuccess, record.Status)
	require.Len(t, record.Conditions, 2)
	assert.True(t, record.Conditions[0].Result)
	assert.True(t, record.Conditions[1].Result)
	require.Len(t, record.Actions, 1)
	assert.Equal(t, "email", record.Actions[0].ActionType)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "email", calls[0].Kind)
	assert.Equal(t, "sales@x.com", calls[0].Fields["to"])

	// Audit trail and counters landed in the store.
	records, err := redisStore.ListExecutions(ctx, "r1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ExecutionID, records[0].ExecutionID)

	updated, err := redisStore.GetRule(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ExecutionCount)
	assert.Equal(t, 1.0, updated.SuccessRate)

	activity, err := redisStore.ListActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, "rule_execution", activity[0].Type)
}

func TestEndToEndWithMultipleRules(t *testing.T) {
	s, redisStore, _, engine := setupE2E(t)
	ctx := context.Background()

	require.NoError(t, redisStore.SaveRule(ctx, &model.Rule{
		ID: "r1", Name: "first", Priority: 1, Status: model.RuleStatusActive,
		DSL: "WHEN order.total > 1000\nTHEN send_notification(message: \"first\")",
	}))
	require.NoError(t, redisStore.SaveRule(ctx, &model.Rule{
		ID: "r2", Name: "broken", Priority: 2, Status: model.RuleStatusActive,
		DSL: "THEN send_notification(message: \"never\")",
	}))
	require.NoError(t, redisStore.SaveRule(ctx, &model.Rule{
		ID: "r3", Name: "third", Priority: 3, Status: model.RuleStatusActive,
		DSL: "WHEN order.total > 1000\nTHEN send_notification(message: \"third\")",
	}))
	s.Set("order:o1", `{"total": 1500}`)

	rules, err := redisStore.GetActiveRules(ctx, store.Filter{}, 0)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	ectx, trigger := runtime.BuildContext(ctx, redisStore, model.TriggerEvent{
		EventType: "order_placed",
		OrderID:   "o1",
	})
	results := engine.ExecuteRules(ctx, rules, ectx, trigger)

	require.Len(t, results, 3)
	assert.Equal(t, "r1", results[0].RuleID)
	assert.Equal(t, model.StatusSuccess, results[0].Status)
	assert.Equal(t, "r2", results[1].RuleID)
	assert.Equal(t, model.StatusFailed, results[1].Status)
	assert.Contains(t, results[1].Error, "parse error")
	assert.Equal(t, "r3", results[2].RuleID)
	assert.Equal(t, model.StatusSuccess, results[2].Status)
}

func TestEndToEndSkippedRule(t *testing.T) {
	s, redisStore, mock, engine := setupE2E(t)
	ctx := context.Background()

	require.NoError(t, redisStore.SaveRule(ctx, &model.Rule{
		ID:     "r1",
		Name:   "premium big order",
		DSL:    "WHEN order.total > 1000\nTHEN send_email(to: \"sales@x.com\", subject: \"Alert\")",
		Status: model.RuleStatusActive,
	}))
	s.Set("order:o1", `{"total": 500}`)

	rules, err := redisStore.GetActiveRules(ctx, store.Filter{}, 0)
	require.NoError(t, err)

	ectx, trigger := runtime.BuildContext(ctx, redisStore, model.TriggerEvent{
		EventType: "order_placed",
		OrderID:   "o1",
	})
	results := engine.ExecuteRules(ctx, rules, ectx, trigger)

	require.Len(t, results, 1)
	assert.Equal(t, model.StatusSkipped, results[0].Status)
	assert.Empty(t, results[0].Actions)
	assert.Empty(t, mock.Calls())

	// A skip counts as an execution but leaves the success rate alone.
	updated, err := redisStore.GetRule(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ExecutionCount)
	assert.Equal(t, 0.0, updated.SuccessRate)
}

// Full pass through the real Redis-backed integrations: a database write
// followed by a notification referencing the same order.
func TestEndToEndRedisIntegrations(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	redisStore := store.NewRedisStoreFromClient(client)

	dispatcher := action.NewDispatcher(action.Integrations{
		Database:      integrations.NewRedisDatabaseWriter(client),
		Notifications: integrations.NewRedisNotificationPublisher(client),
	})
	engine := runtime.NewEngine(redisStore, dispatcher)
	ctx := context.Background()

	require.NoError(t, redisStore.SaveRule(ctx, &model.Rule{
		ID:     "r1",
		Name:   "flag big order",
		Status: model.RuleStatusActive,
		DSL: "WHEN order.total > 1000\n" +
			"THEN update_database(table: \"orders\", operation: \"update\", id: \"order.id\", status: \"flagged\")\n" +
			"AND send_notification(message: \"order order.id flagged\", channel: \"alerts\")",
	}))
	s.Set("order:o1", `{"id": "o1", "total": 1500}`)

	rules, err := redisStore.GetActiveRules(ctx, store.Filter{}, 0)
	require.NoError(t, err)

	ectx, trigger := runtime.BuildContext(ctx, redisStore, model.TriggerEvent{
		EventType: "order_placed",
		OrderID:   "o1",
	})
	results := engine.ExecuteRules(ctx, rules, ectx, trigger)

	require.Len(t, results, 1)
	require.Equal(t, model.StatusSuccess, results[0].Status)
	require.Len(t, results[0].Actions, 2)
	assert.True(t, results[0].Actions[0].Success)
	assert.True(t, results[0].Actions[1].Success)

	// The database action updated the order hash.
	assert.Equal(t, "flagged", s.HGet("orders:o1", "status"))

	// The notification landed on the alerts list with the id interpolated.
	items, err := s.List("notifications:alerts")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], "order o1 flagged")
}
