// ruleflow/pkg/action/integrations.go

package action

import "context"

// IntegrationResult is the uniform shape every outbound integration
// reports back, success or not.
type IntegrationResult struct {
	Success    bool                   `json:"success"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Error      string                 `json:"error,omitempty"`
	StatusCode int                    `json:"statusCode,omitempty"`
}

// Mailer delivers email actions.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) *IntegrationResult
}

// SMSGateway delivers sms actions.
type SMSGateway interface {
	SendSMS(ctx context.Context, to, message string) *IntegrationResult
}

// WebhookClient performs outbound HTTP calls for webhook actions.
type WebhookClient interface {
	Call(ctx context.Context, url, method string, payload map[string]string) *IntegrationResult
}

// DatabaseWriter applies database actions.
type DatabaseWriter interface {
	Execute(ctx context.Context, table, operation string, data map[string]string) *IntegrationResult
}

// NotificationPublisher delivers notification actions.
type NotificationPublisher interface {
	Publish(ctx context.Context, channel, message string) *IntegrationResult
}

// Integrations bundles the concrete transports a Dispatcher talks to. Any
// nil field makes the matching action type fail with an integration error
// instead of panicking.
type Integrations struct {
	Mailer        Mailer
	SMS           SMSGateway
	Webhook       WebhookClient
	Database      DatabaseWriter
	Notifications NotificationPublisher
}
