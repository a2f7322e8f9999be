// ruleflow/pkg/logging/errors_test.go

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	tests := []struct {
		name        string
		errType     ErrorType
		message     string
		err         error
		fields      map[string]interface{}
		expectedMsg string
	}{
		{
			name:        "Parse error",
			errType:     ErrorTypeParse,
			message:     "multiple WHEN clauses",
			err:         errors.New("line 3"),
			fields:      map[string]interface{}{"line": 3},
			expectedMsg: "PARSE: multiple WHEN clauses",
		},
		{
			name:        "Evaluation error",
			errType:     ErrorTypeEvaluation,
			message:     "unexpected token",
			err:         nil,
			fields:      nil,
			expectedMsg: "EVALUATION: unexpected token",
		},
		{
			name:        "Action error",
			errType:     ErrorTypeAction,
			message:     "missing required field",
			err:         errors.New("subject"),
			fields:      map[string]interface{}{"action_type": "email"},
			expectedMsg: "ACTION: missing required field",
		},
		{
			name:        "Integration error",
			errType:     ErrorTypeIntegration,
			message:     "webhook call timed out",
			err:         errors.New("context deadline exceeded"),
			fields:      map[string]interface{}{"url": "http://example.com"},
			expectedMsg: "INTEGRATION: webhook call timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engErr := NewError(tt.errType, tt.message, tt.err, tt.fields)

			assert.Equal(t, tt.errType, engErr.Type)
			assert.Equal(t, tt.message, engErr.Message)
			assert.Equal(t, tt.err, engErr.Err)
			assert.Equal(t, tt.fields, engErr.Fields)
			assert.Equal(t, tt.expectedMsg, engErr.Error())

			if tt.err != nil {
				assert.Equal(t, tt.err, errors.Unwrap(engErr))
			}
		})
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	engErr := NewError(ErrorTypeParse, "unrecognized line prefix", errors.New("bad line"), map[string]interface{}{
		"line": 2,
	})
	LogError(logger, engErr)

	var entry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &entry)
	assert.NoError(t, err)
	assert.Equal(t, "PARSE", entry["error_type"])
	assert.Equal(t, "unrecognized line prefix", entry["message"])
	assert.Equal(t, float64(2), entry["line"])

	buf.Reset()
	LogError(logger, errors.New("plain error"))
	err = json.Unmarshal(buf.Bytes(), &entry)
	assert.NoError(t, err)
	assert.Equal(t, "plain error", entry["error"])
}
