// ruleflow/pkg/expr/eval_test.go

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"2 + 2 * 2", float64(6)},
		{"(2 + 2) * 2", float64(8)},
		{"10 - 4 / 2", float64(8)},
		{"7 % 3", float64(1)},
		{"-5 + 10", float64(5)},
		{"1.5 * 2", float64(3)},
		{"\"foo\" + \"bar\"", "foobar"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, err := Evaluate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestEvaluateComparisons(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"5 > 3", true},
		{"3 > 5", false},
		{"5 >= 5", true},
		{"2 < 1", false},
		{"2 <= 2", true},
		{"\"premium\" == \"premium\"", true},
		{"\"premium\" == \"basic\"", false},
		{"\"premium\" != \"basic\"", true},
		{"\"abc\" < \"abd\"", true},
		{"true == true", true},
		{"true != false", true},
		{"null == null", true},
		{"null != 5", true},
		{"1500 > 1000 && \"premium\" == \"premium\"", true},
		{"1 > 2 || 3 > 2", true},
		{"!(5 > 3)", false},
		{"5 == \"5\"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, err := Evaluate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

// Malformed or disallowed input must fail as data, and must never reach
// anything that executes code.
func TestEvaluateRejectsUnsafeInput(t *testing.T) {
	tests := []string{
		"1; rm -rf",
		"process.exit(1)",
		"customer.tier == \"premium\"", // uninterpolated reference
		"x = 5",
		"foo()",
		"5 >",
		"(5 > 3",
		"\"unterminated",
		"5 > 3 &",
		"",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			passed, value, err := EvaluateBool(input)
			assert.False(t, passed)
			assert.Nil(t, value)
			assert.Error(t, err)
		})
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	_, err := Evaluate("5 / 0")
	assert.Error(t, err)
	_, err = Evaluate("5 % 0")
	assert.Error(t, err)
}

func TestEvaluateBoolTruthiness(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"5 > 3", true},
		{"2 + 2", true},
		{"0", false},
		{"\"\"", false},
		{"\"nonempty\"", true},
		{"null", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			passed, _, err := EvaluateBool(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, passed)
		})
	}
}
