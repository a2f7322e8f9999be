// ruleflow/pkg/integrations/webhook_client.go

package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"rulehub/ruleflow/pkg/action"
	"rulehub/ruleflow/pkg/logging"
)

// DefaultWebhookTimeout bounds each outbound call; a timeout is a normal
// failed result, not a batch fault.
const DefaultWebhookTimeout = 30 * time.Second

// WebhookClient performs webhook actions over HTTP. The remaining action
// parameters (everything but url and method) travel as a JSON body.
type WebhookClient struct {
	client  *http.Client
	timeout time.Duration
}

func NewWebhookClient(timeout time.Duration) *WebhookClient {
	if timeout == 0 {
		timeout = DefaultWebhookTimeout
	}
	return &WebhookClient{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (c *WebhookClient) Call(ctx context.Context, url, method string, payload map[string]string) *action.IntegrationResult {
	method = strings.ToUpper(method)

	var body io.Reader
	if len(payload) > 0 && method != http.MethodGet {
		data, err := json.Marshal(payload)
		if err != nil {
			return &action.IntegrationResult{Success: false, Error: err.Error()}
		}
		body = bytes.NewReader(data)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, url, body)
	if err != nil {
		return &action.IntegrationResult{Success: false, Error: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logging.Logger.Warn().Err(err).Str("url", url).Msg("Webhook call failed")
		return &action.IntegrationResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	result := &action.IntegrationResult{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Data: map[string]interface{}{
			"body": string(respBody),
		},
	}
	if !result.Success {
		result.Error = resp.Status
	}
	return result
}
