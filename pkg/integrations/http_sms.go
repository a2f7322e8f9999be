// ruleflow/pkg/integrations/http_sms.go

package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rulehub/ruleflow/pkg/action"
	"rulehub/ruleflow/pkg/logging"
)

// HTTPSMSGateway delivers sms actions by POSTing to a provider's JSON API.
type HTTPSMSGateway struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

func NewHTTPSMSGateway(endpoint, apiKey, from string, timeout time.Duration) *HTTPSMSGateway {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSMSGateway{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *HTTPSMSGateway) SendSMS(ctx context.Context, to, message string) *action.IntegrationResult {
	payload, err := json.Marshal(map[string]string{
		"from":    g.from,
		"to":      to,
		"message": message,
	})
	if err != nil {
		return &action.IntegrationResult{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return &action.IntegrationResult{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logging.Logger.Warn().Err(err).Str("to", to).Msg("SMS send failed")
		return &action.IntegrationResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &action.IntegrationResult{
			Success:    false,
			StatusCode: resp.StatusCode,
			Error:      fmt.Sprintf("sms provider returned %s", resp.Status),
		}
	}
	return &action.IntegrationResult{
		Success:    true,
		StatusCode: resp.StatusCode,
		Data:       map[string]interface{}{"to": to},
	}
}
