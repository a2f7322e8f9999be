// ruleflow/pkg/store/redis_store.go

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rulehub/ruleflow/pkg/logging"
	"rulehub/ruleflow/pkg/model"
)

// Key layout:
//
//	rule:<id>        JSON rule record
//	perf:<id>        hash of execution counters
//	executions:<id>  list of execution records, newest first
//	activity         list of activity entries, newest first
//	<kind>:<id>      JSON entity (customer, order, product, ...)
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection before
// returning the handle. Callers own teardown via Close.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	logging.Logger.Info().Str("addr", addr).Int("db", db).Msg("Connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, logging.NewError(logging.ErrorTypeStore, "failed to connect to Redis", err,
			map[string]interface{}{"addr": addr})
	}

	logging.Logger.Info().Msg("Successfully connected to Redis")
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client. Used by tests.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SaveRule(ctx context.Context, rule *model.Rule) error {
	if rule.ID == "" {
		return logging.NewError(logging.ErrorTypeStore, "rule id is required", nil, nil)
	}
	data, err := json.Marshal(rule)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "rule:"+rule.ID, data, 0).Err()
}

func (s *RedisStore) GetRule(ctx context.Context, id string) (*model.Rule, error) {
	data, err := s.client.Get(ctx, "rule:"+id).Result()
	if err == redis.Nil {
		logging.Logger.Debug().Str("rule_id", id).Msg("Rule not found in Redis")
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var rule model.Rule
	if err := json.Unmarshal([]byte(data), &rule); err != nil {
		return nil, err
	}
	if err := s.attachCounters(ctx, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetActiveRules scans stored rules, keeps the active ones matching the
// filter, and returns them ordered by priority (lower fires first).
func (s *RedisStore) GetActiveRules(ctx context.Context, filter Filter, limit int) ([]model.Rule, error) {
	keys, err := s.scanKeys(ctx, "rule:*")
	if err != nil {
		return nil, err
	}

	var rules []model.Rule
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return nil, err
		}

		var rule model.Rule
		if err := json.Unmarshal([]byte(data), &rule); err != nil {
			logging.Logger.Warn().Err(err).Str("key", key).Msg("Skipping undecodable rule record")
			continue
		}
		if rule.Status != model.RuleStatusActive {
			continue
		}
		if !matchesTags(rule.Tags, filter.Tags) {
			continue
		}
		if err := s.attachCounters(ctx, &rule); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})

	if limit > 0 && len(rules) > limit {
		rules = rules[:limit]
	}
	return rules, nil
}

func matchesTags(ruleTags, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	tagSet := make(map[string]bool, len(ruleTags))
	for _, t := range ruleTags {
		tagSet[t] = true
	}
	for _, t := range wanted {
		if !tagSet[t] {
			return false
		}
	}
	return true
}

func (s *RedisStore) CreateExecutionRecord(ctx context.Context, record *model.ExecutionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	// Append-only audit trail, newest first.
	return s.client.LPush(ctx, "executions:"+record.RuleID, data).Err()
}

func (s *RedisStore) ListExecutions(ctx context.Context, ruleID string, limit int) ([]model.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	items, err := s.client.LRange(ctx, "executions:"+ruleID, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	records := make([]model.ExecutionRecord, 0, len(items))
	for _, item := range items {
		var record model.ExecutionRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// UpdateRulePerformance bumps the aggregate counters for one rule. HIncrBy
// keeps concurrent batches from interleaving unsafely. Skips count as an
// execution but stay out of the success-rate denominator.
func (s *RedisStore) UpdateRulePerformance(ctx context.Context, ruleID string, execTime time.Duration, outcome model.Outcome) error {
	key := "perf:" + ruleID
	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, key, "executions", 1)
	pipe.HIncrBy(ctx, key, "total_time_ms", execTime.Milliseconds())
	switch outcome {
	case model.OutcomeSuccess:
		pipe.HIncrBy(ctx, key, "successes", 1)
	case model.OutcomeFailure:
		pipe.HIncrBy(ctx, key, "failures", 1)
	case model.OutcomeSkip:
		pipe.HIncrBy(ctx, key, "skips", 1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// attachCounters overlays the live perf counters onto a rule record.
func (s *RedisStore) attachCounters(ctx context.Context, rule *model.Rule) error {
	counters, err := s.client.HGetAll(ctx, "perf:"+rule.ID).Result()
	if err != nil {
		return err
	}
	if len(counters) == 0 {
		return nil
	}

	executions := counterValue(counters, "executions")
	successes := counterValue(counters, "successes")
	failures := counterValue(counters, "failures")

	rule.ExecutionCount = executions
	if attempted := successes + failures; attempted > 0 {
		rule.SuccessRate = float64(successes) / float64(attempted)
	}
	return nil
}

func counterValue(counters map[string]string, field string) int64 {
	v, err := strconv.ParseInt(counters[field], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (s *RedisStore) LogActivity(ctx context.Context, entry *model.ActivityEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.client.LPush(ctx, "activity", data).Err(); err != nil {
		return err
	}
	// Live feed for dashboards; best effort on top of the durable list.
	if err := s.client.Publish(ctx, "activity", data).Err(); err != nil {
		logging.Logger.Warn().Err(err).Msg("Failed to publish activity entry")
	}
	return nil
}

func (s *RedisStore) ListActivity(ctx context.Context, limit int) ([]model.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	items, err := s.client.LRange(ctx, "activity", 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.ActivityEntry, 0, len(items))
	for _, item := range items {
		var entry model.ActivityEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetEntity loads one context object (customer, order, product, ...) by
// kind and id. A missing entity is nil, not an error.
func (s *RedisStore) GetEntity(ctx context.Context, kind, id string) (map[string]interface{}, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf("%s:%s", kind, id)).Result()
	if err == redis.Nil {
		logging.Logger.Debug().Str("kind", kind).Str("id", id).Msg("Entity not found in Redis")
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var entity map[string]interface{}
	if err := json.Unmarshal([]byte(data), &entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *RedisStore) SubscribeTriggers(ctx context.Context, channels ...string) *redis.PubSub {
	logging.Logger.Info().Strs("channels", channels).Msg("Subscribing to trigger channels")
	return s.client.Subscribe(ctx, channels...)
}

func (s *RedisStore) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}
