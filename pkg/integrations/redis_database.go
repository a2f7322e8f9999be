// ruleflow/pkg/integrations/redis_database.go

package integrations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rulehub/ruleflow/pkg/action"
	"rulehub/ruleflow/pkg/logging"
)

// RedisDatabaseWriter applies database actions to redis hashes keyed
// `<table>:<id>`. Inserts mint an id when none is given.
type RedisDatabaseWriter struct {
	client *redis.Client
}

func NewRedisDatabaseWriter(client *redis.Client) *RedisDatabaseWriter {
	return &RedisDatabaseWriter{client: client}
}

func (w *RedisDatabaseWriter) Execute(ctx context.Context, table, operation string, data map[string]string) *action.IntegrationResult {
	id := data["id"]

	switch operation {
	case "insert":
		if id == "" {
			id = uuid.NewString()
		}
		fallthrough
	case "update":
		if id == "" {
			return &action.IntegrationResult{Success: false, Error: "update requires an id field"}
		}
		key := fmt.Sprintf("%s:%s", table, id)
		fields := make(map[string]interface{}, len(data))
		for k, v := range data {
			if k != "id" {
				fields[k] = v
			}
		}
		if len(fields) == 0 {
			return &action.IntegrationResult{Success: false, Error: "no fields to write"}
		}
		if err := w.client.HSet(ctx, key, fields).Err(); err != nil {
			logging.Logger.Warn().Err(err).Str("key", key).Msg("Database write failed")
			return &action.IntegrationResult{Success: false, Error: err.Error()}
		}
		return &action.IntegrationResult{
			Success: true,
			Data:    map[string]interface{}{"key": key, "operation": operation},
		}
	case "delete":
		if id == "" {
			return &action.IntegrationResult{Success: false, Error: "delete requires an id field"}
		}
		key := fmt.Sprintf("%s:%s", table, id)
		if err := w.client.Del(ctx, key).Err(); err != nil {
			return &action.IntegrationResult{Success: false, Error: err.Error()}
		}
		return &action.IntegrationResult{
			Success: true,
			Data:    map[string]interface{}{"key": key, "operation": operation},
		}
	default:
		return &action.IntegrationResult{
			Success: false,
			Error:   fmt.Sprintf("unsupported database operation %q", operation),
		}
	}
}
