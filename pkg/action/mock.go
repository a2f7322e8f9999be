// ruleflow/pkg/action/mock.go

package action

import (
	"context"
	"sync"
)

// MockCall records one invocation against a mock integration.
type MockCall struct {
	Kind   string
	Fields map[string]string
}

// MockIntegration implements every integration interface in-memory. It
// backs the engine tests and the daemon's dry-run mode.
type MockIntegration struct {
	mu    sync.Mutex
	calls []MockCall

	// FailWith, when non-empty, makes every call report a failure.
	FailWith string
}

func NewMockIntegration() *MockIntegration {
	return &MockIntegration{}
}

// All returns the Integrations bundle with every slot pointing at m.
func (m *MockIntegration) All() Integrations {
	return Integrations{
		Mailer:        m,
		SMS:           m,
		Webhook:       m,
		Database:      m,
		Notifications: m,
	}
}

func (m *MockIntegration) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockIntegration) record(kind string, fields map[string]string) *IntegrationResult {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Kind: kind, Fields: fields})
	failWith := m.FailWith
	m.mu.Unlock()

	if failWith != "" {
		return &IntegrationResult{Success: false, Error: failWith}
	}
	return &IntegrationResult{Success: true, Data: map[string]interface{}{"mock": true}}
}

func (m *MockIntegration) SendEmail(_ context.Context, to, subject, body string) *IntegrationResult {
	return m.record("email", map[string]string{"to": to, "subject": subject, "body": body})
}

func (m *MockIntegration) SendSMS(_ context.Context, to, message string) *IntegrationResult {
	return m.record("sms", map[string]string{"to": to, "message": message})
}

func (m *MockIntegration) Call(_ context.Context, url, method string, payload map[string]string) *IntegrationResult {
	fields := map[string]string{"url": url, "method": method}
	for k, v := range payload {
		fields[k] = v
	}
	return m.record("webhook", fields)
}

func (m *MockIntegration) Execute(_ context.Context, table, operation string, data map[string]string) *IntegrationResult {
	fields := map[string]string{"table": table, "operation": operation}
	for k, v := range data {
		fields[k] = v
	}
	return m.record("database", fields)
}

func (m *MockIntegration) Publish(_ context.Context, channel, message string) *IntegrationResult {
	return m.record("notification", map[string]string{"channel": channel, "message": message})
}
