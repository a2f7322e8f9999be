// ruleflow/pkg/integrations/redis_notifier.go

package integrations

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"rulehub/ruleflow/pkg/action"
	"rulehub/ruleflow/pkg/logging"
)

// DefaultNotificationChannel receives notification actions that name no
// channel of their own.
const DefaultNotificationChannel = "notifications"

// RedisNotificationPublisher delivers notification actions: the message is
// appended to a durable list and published on the channel for live
// subscribers.
type RedisNotificationPublisher struct {
	client *redis.Client
}

func NewRedisNotificationPublisher(client *redis.Client) *RedisNotificationPublisher {
	return &RedisNotificationPublisher{client: client}
}

func (p *RedisNotificationPublisher) Publish(ctx context.Context, channel, message string) *action.IntegrationResult {
	if channel == "" {
		channel = DefaultNotificationChannel
	}

	payload, err := json.Marshal(map[string]interface{}{
		"channel":   channel,
		"message":   message,
		"timestamp": time.Now(),
	})
	if err != nil {
		return &action.IntegrationResult{Success: false, Error: err.Error()}
	}

	if err := p.client.LPush(ctx, "notifications:"+channel, payload).Err(); err != nil {
		logging.Logger.Warn().Err(err).Str("channel", channel).Msg("Notification append failed")
		return &action.IntegrationResult{Success: false, Error: err.Error()}
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return &action.IntegrationResult{Success: false, Error: err.Error()}
	}

	return &action.IntegrationResult{
		Success: true,
		Data:    map[string]interface{}{"channel": channel},
	}
}
