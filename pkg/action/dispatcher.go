// ruleflow/pkg/action/dispatcher.go

package action

import (
	"context"
	"fmt"
	"time"

	"rulehub/ruleflow/pkg/logging"
	"rulehub/ruleflow/pkg/model"
)

// requiredFields lists the minimum config every action type must carry.
var requiredFields = map[Type][]string{
	TypeEmail:        {"to", "subject"},
	TypeSMS:          {"to", "message"},
	TypeWebhook:      {"url", "method"},
	TypeDatabase:     {"table", "operation"},
	TypeNotification: {"message"},
}

// Dispatcher validates an action config, invokes the matching integration,
// times the call and translates the outcome into an ActionResult. Failures
// never escape the dispatcher as errors or panics; they come back as
// result data.
type Dispatcher struct {
	integrations Integrations
}

func NewDispatcher(integrations Integrations) *Dispatcher {
	return &Dispatcher{integrations: integrations}
}

// Execute runs one action. The returned result always carries the action
// id, type and wall-clock execution time.
func (d *Dispatcher) Execute(ctx context.Context, config *Config) model.ActionResult {
	start := time.Now()
	result := model.ActionResult{
		ActionID:   config.ID,
		ActionType: string(config.Type),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("action panicked: %v", r)
			result.ExecutionTime = time.Since(start).Milliseconds()
			logging.Logger.Error().Str("action_id", config.ID).Interface("panic", r).Msg("Recovered action panic")
		}
	}()

	if err := d.validate(config); err != nil {
		result.Error = err.Error()
		result.ExecutionTime = time.Since(start).Milliseconds()
		logging.LogError(logging.Logger, err)
		return result
	}

	integrationResult := d.invoke(ctx, config)
	result.Success = integrationResult.Success
	result.Data = integrationResult.Data
	result.Error = integrationResult.Error
	result.ExecutionTime = time.Since(start).Milliseconds()

	logging.Logger.Debug().
		Str("action_id", config.ID).
		Str("action_type", string(config.Type)).
		Bool("success", result.Success).
		Int64("execution_ms", result.ExecutionTime).
		Msg("Action executed")

	return result
}

// validate checks the type is a known member of the closed set and that the
// per-type required fields are present and non-empty.
func (d *Dispatcher) validate(config *Config) error {
	fields, known := requiredFields[config.Type]
	if !known {
		return logging.NewError(logging.ErrorTypeAction,
			fmt.Sprintf("unknown action type %q", config.Type), nil,
			map[string]interface{}{"source": config.Source})
	}
	if config.Type == TypeDatabase {
		// "collection" is the document-store spelling of "table"
		if config.Config["table"] == "" && config.Config["collection"] == "" {
			return logging.NewError(logging.ErrorTypeAction,
				`database action requires "table" or "collection"`, nil,
				map[string]interface{}{"action_id": config.ID})
		}
		fields = []string{"operation"}
	}
	for _, field := range fields {
		if config.Config[field] == "" {
			return logging.NewError(logging.ErrorTypeAction,
				fmt.Sprintf("%s action requires %q", config.Type, field), nil,
				map[string]interface{}{"action_id": config.ID})
		}
	}
	return nil
}

func (d *Dispatcher) invoke(ctx context.Context, config *Config) *IntegrationResult {
	cfg := config.Config
	switch config.Type {
	case TypeEmail:
		if d.integrations.Mailer == nil {
			return missingIntegration("mailer")
		}
		return d.integrations.Mailer.SendEmail(ctx, cfg["to"], cfg["subject"], cfg["body"])
	case TypeSMS:
		if d.integrations.SMS == nil {
			return missingIntegration("sms gateway")
		}
		return d.integrations.SMS.SendSMS(ctx, cfg["to"], cfg["message"])
	case TypeWebhook:
		if d.integrations.Webhook == nil {
			return missingIntegration("webhook client")
		}
		payload := make(map[string]string, len(cfg))
		for k, v := range cfg {
			if k != "url" && k != "method" {
				payload[k] = v
			}
		}
		return d.integrations.Webhook.Call(ctx, cfg["url"], cfg["method"], payload)
	case TypeDatabase:
		if d.integrations.Database == nil {
			return missingIntegration("database writer")
		}
		data := make(map[string]string, len(cfg))
		for k, v := range cfg {
			if k != "table" && k != "collection" && k != "operation" {
				data[k] = v
			}
		}
		table := cfg["table"]
		if table == "" {
			table = cfg["collection"]
		}
		return d.integrations.Database.Execute(ctx, table, cfg["operation"], data)
	case TypeNotification:
		if d.integrations.Notifications == nil {
			return missingIntegration("notification publisher")
		}
		return d.integrations.Notifications.Publish(ctx, cfg["channel"], cfg["message"])
	default:
		// validate rejects unknown types before we get here
		return &IntegrationResult{Error: fmt.Sprintf("unknown action type %q", config.Type)}
	}
}

func missingIntegration(name string) *IntegrationResult {
	return &IntegrationResult{
		Success: false,
		Error:   fmt.Sprintf("no %s configured", name),
	}
}
