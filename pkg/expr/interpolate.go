// ruleflow/pkg/expr/interpolate.go

package expr

import (
	"regexp"
	"strconv"
	"strings"

	"rulehub/ruleflow/pkg/logging"
)

// Dotted object.property references, with arbitrarily deep paths.
var refPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)(\.[A-Za-z_][A-Za-z0-9_]*)+\b`)

// routing maps DSL object names onto context keys. Anything not listed is
// looked up as a direct context key.
var routing = map[string]string{
	"customer": "customer",
	"order":    "order",
	"product":  "product",
	"event":    "eventData",
}

// Interpolate substitutes dotted variable references in an expression with
// literals from the context: strings quoted, other primitives as-is. An
// object name that resolves but whose path runs into a missing segment
// substitutes null; an object name absent from the context leaves the
// reference as literal text, which the evaluator then rejects as an
// unresolved variable instead of throwing.
func Interpolate(expression string, ctx map[string]interface{}) string {
	return interpolate(expression, ctx, true)
}

// InterpolateRaw is Interpolate for action parameter values: resolved
// strings are substituted without surrounding quotes, so the parameter ends
// up as plain text rather than an expression literal.
func InterpolateRaw(expression string, ctx map[string]interface{}) string {
	return interpolate(expression, ctx, false)
}

func interpolate(expression string, ctx map[string]interface{}, quoteStrings bool) string {
	if ctx == nil {
		return expression
	}

	return refPattern.ReplaceAllStringFunc(expression, func(ref string) string {
		parts := strings.Split(ref, ".")
		root, ok := resolveRoot(parts[0], ctx)
		if !ok {
			logging.Logger.Debug().Str("ref", ref).Msg("Unresolved variable reference left as-is")
			return ref
		}

		value, found := lookupPath(root, parts[1:])
		if !found {
			return "null"
		}
		return formatValue(value, quoteStrings)
	})
}

func resolveRoot(name string, ctx map[string]interface{}) (interface{}, bool) {
	key := name
	if routed, ok := routing[name]; ok {
		key = routed
	}
	value, ok := ctx[key]
	return value, ok
}

// lookupPath walks the remaining path segments through nested maps. A
// missing segment reports not-found rather than an error.
func lookupPath(root interface{}, path []string) (interface{}, bool) {
	current := root
	for _, segment := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func formatValue(value interface{}, quoteStrings bool) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		if quoteStrings {
			return strconv.Quote(v)
		}
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		// Nested objects have no literal form in the expression language;
		// substituting them would only move the failure. Leave null.
		return "null"
	}
}
