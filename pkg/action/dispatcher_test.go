// ruleflow/pkg/action/dispatcher_test.go

package action

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherExecutesEmail(t *testing.T) {
	mock := NewMockIntegration()
	dispatcher := NewDispatcher(mock.All())

	config, err := ParseExpression(`send_email(to: "sales@x.com", subject: "Alert", body: "big order")`, nil)
	require.NoError(t, err)

	result := dispatcher.Execute(context.Background(), config)
	assert.True(t, result.Success)
	assert.Equal(t, "email", result.ActionType)
	assert.Equal(t, config.ID, result.ActionID)
	assert.Empty(t, result.Error)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "email", calls[0].Kind)
	assert.Equal(t, "sales@x.com", calls[0].Fields["to"])
	assert.Equal(t, "Alert", calls[0].Fields["subject"])
}

func TestDispatcherValidation(t *testing.T) {
	mock := NewMockIntegration()
	dispatcher := NewDispatcher(mock.All())

	tests := []struct {
		name       string
		expression string
		wantError  string
	}{
		{
			name:       "email missing subject",
			expression: `send_email(to: "sales@x.com")`,
			wantError:  `email action requires "subject"`,
		},
		{
			name:       "sms missing message",
			expression: `send_sms(to: "+15550100")`,
			wantError:  `sms action requires "message"`,
		},
		{
			name:       "webhook missing method",
			expression: `call_webhook(url: "http://x")`,
			wantError:  `webhook action requires "method"`,
		},
		{
			name:       "database missing table and collection",
			expression: `update_database(operation: "update")`,
			wantError:  `database action requires "table" or "collection"`,
		},
		{
			name:       "notification missing message",
			expression: `send_notification(channel: "alerts")`,
			wantError:  `notification action requires "message"`,
		},
		{
			name:       "unknown action type",
			expression: `launch_rocket(target: "moon")`,
			wantError:  `unknown action type "launch_rocket"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseExpression(tt.expression, nil)
			require.NoError(t, err)

			result := dispatcher.Execute(context.Background(), config)
			assert.False(t, result.Success)
			assert.Contains(t, result.Error, tt.wantError)
		})
	}

	// Nothing should have reached the integrations.
	assert.Empty(t, mock.Calls())
}

func TestDispatcherDatabaseAcceptsCollection(t *testing.T) {
	mock := NewMockIntegration()
	dispatcher := NewDispatcher(mock.All())

	config, err := ParseExpression(`update_database(collection: "orders", operation: "insert", status: "flagged")`, nil)
	require.NoError(t, err)

	result := dispatcher.Execute(context.Background(), config)
	assert.True(t, result.Success)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "orders", calls[0].Fields["table"])
	assert.Equal(t, "insert", calls[0].Fields["operation"])
	assert.Equal(t, "flagged", calls[0].Fields["status"])
}

// Integration failures come back as result data, never as an error or panic.
func TestDispatcherIntegrationFailure(t *testing.T) {
	mock := NewMockIntegration()
	mock.FailWith = "smtp connection refused"
	dispatcher := NewDispatcher(mock.All())

	config, err := ParseExpression(`send_email(to: "sales@x.com", subject: "Alert")`, nil)
	require.NoError(t, err)

	result := dispatcher.Execute(context.Background(), config)
	assert.False(t, result.Success)
	assert.Equal(t, "smtp connection refused", result.Error)
	assert.GreaterOrEqual(t, result.ExecutionTime, int64(0))
}

func TestDispatcherMissingIntegration(t *testing.T) {
	dispatcher := NewDispatcher(Integrations{})

	config, err := ParseExpression(`send_sms(to: "+15550100", message: "hi")`, nil)
	require.NoError(t, err)

	result := dispatcher.Execute(context.Background(), config)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no sms gateway configured")
}
