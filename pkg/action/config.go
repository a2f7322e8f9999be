// ruleflow/pkg/action/config.go

package action

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"rulehub/ruleflow/pkg/expr"
	"rulehub/ruleflow/pkg/logging"
)

// Type is the closed set of dispatchable action kinds.
type Type string

const (
	TypeEmail        Type = "email"
	TypeSMS          Type = "sms"
	TypeWebhook      Type = "webhook"
	TypeDatabase     Type = "database"
	TypeNotification Type = "notification"
)

// functionTypes maps DSL function names onto action types. The map is
// static and closed; unknown names pass through as a literal type and fail
// validation when executed.
var functionTypes = map[string]Type{
	"send_email":        TypeEmail,
	"send_sms":          TypeSMS,
	"call_webhook":      TypeWebhook,
	"update_database":   TypeDatabase,
	"send_notification": TypeNotification,
}

// Config is one action invocation synthesized from a rule's DSL action
// clause. It is never persisted.
type Config struct {
	ID     string            `json:"id"`
	Type   Type              `json:"type"`
	Config map[string]string `json:"config"`
	Source string            `json:"source"`
}

// Outer call syntax: function_name( ... )
var callPattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\((.*)\)\s*$`)

// ParseExpression parses an action expression of the form
//
//	function_name(key1: "value1", key2: "value2")
//
// into a Config. Parameter values are interpolated against the context
// before quote handling, so "customer.email" style references land as plain
// text. Malformed parameter lists are rejected, not silently dropped.
func ParseExpression(expression string, ctx map[string]interface{}) (*Config, error) {
	match := callPattern.FindStringSubmatch(expression)
	if match == nil {
		return nil, logging.NewError(logging.ErrorTypeAction,
			fmt.Sprintf("not a valid action expression: %q", expression), nil, nil)
	}

	name := match[1]
	params, err := parseParams(match[2])
	if err != nil {
		return nil, err
	}

	config := make(map[string]string, len(params))
	for key, value := range params {
		config[key] = expr.InterpolateRaw(value, ctx)
	}

	actionType, ok := functionTypes[name]
	if !ok {
		// Pass-through type; Dispatcher.Execute validates it explicitly.
		actionType = Type(name)
		logging.Logger.Warn().Str("function", name).Msg("Unrecognized action function name")
	}

	return &Config{
		ID:     uuid.NewString(),
		Type:   actionType,
		Config: config,
		Source: expression,
	}, nil
}

// parseParams tokenizes a flat `key: "value", key: "value"` list. Values
// must be double-quoted strings; nested objects and unquoted values are not
// part of the grammar.
func parseParams(input string) (map[string]string, error) {
	params := make(map[string]string)
	runes := []rune(input)
	i := 0

	skipSpace := func() {
		for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t') {
			i++
		}
	}

	malformed := func(message string) error {
		return logging.NewError(logging.ErrorTypeAction,
			fmt.Sprintf("malformed parameter list: %s", message), nil,
			map[string]interface{}{"params": input})
	}

	skipSpace()
	if i >= len(runes) {
		return params, nil
	}

	for {
		// key
		start := i
		for i < len(runes) && (isIdentRune(runes[i])) {
			i++
		}
		if start == i {
			return nil, malformed("expected parameter name")
		}
		key := string(runes[start:i])

		skipSpace()
		if i >= len(runes) || runes[i] != ':' {
			return nil, malformed(fmt.Sprintf("expected ':' after %q", key))
		}
		i++
		skipSpace()

		// quoted value
		if i >= len(runes) || runes[i] != '"' {
			return nil, malformed(fmt.Sprintf("expected quoted value for %q", key))
		}
		i++
		var sb strings.Builder
		closed := false
		for i < len(runes) {
			if runes[i] == '\\' && i+1 < len(runes) {
				sb.WriteRune(runes[i+1])
				i += 2
				continue
			}
			if runes[i] == '"' {
				closed = true
				i++
				break
			}
			sb.WriteRune(runes[i])
			i++
		}
		if !closed {
			return nil, malformed(fmt.Sprintf("unterminated value for %q", key))
		}
		params[key] = sb.String()

		skipSpace()
		if i >= len(runes) {
			return params, nil
		}
		if runes[i] != ',' {
			return nil, malformed(fmt.Sprintf("unexpected text after value for %q", key))
		}
		i++
		skipSpace()
		if i >= len(runes) {
			return nil, malformed("trailing comma")
		}
	}
}

func isIdentRune(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}
