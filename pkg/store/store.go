// ruleflow/pkg/store/store.go

package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"rulehub/ruleflow/pkg/model"
)

// Filter narrows GetActiveRules. Zero value matches every active rule.
type Filter struct {
	Tags []string
}

// Store is the persistence collaborator contract the engine depends on:
// rule reads, execution-record appends, performance counters, the activity
// log, entity reads for context building, and the trigger subscription.
type Store interface {
	GetActiveRules(ctx context.Context, filter Filter, limit int) ([]model.Rule, error)
	GetRule(ctx context.Context, id string) (*model.Rule, error)
	SaveRule(ctx context.Context, rule *model.Rule) error

	CreateExecutionRecord(ctx context.Context, record *model.ExecutionRecord) error
	ListExecutions(ctx context.Context, ruleID string, limit int) ([]model.ExecutionRecord, error)
	UpdateRulePerformance(ctx context.Context, ruleID string, execTime time.Duration, outcome model.Outcome) error

	LogActivity(ctx context.Context, entry *model.ActivityEntry) error
	ListActivity(ctx context.Context, limit int) ([]model.ActivityEntry, error)

	GetEntity(ctx context.Context, kind, id string) (map[string]interface{}, error)
	SubscribeTriggers(ctx context.Context, channels ...string) *redis.PubSub

	Ping(ctx context.Context) error
	Close() error
}
