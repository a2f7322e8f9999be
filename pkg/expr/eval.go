// ruleflow/pkg/expr/eval.go

package expr

import (
	"fmt"
	"math"

	"rulehub/ruleflow/pkg/logging"
)

// Evaluate lexes, parses and evaluates an interpolated expression over
// literals. It only ever computes arithmetic, comparisons and boolean
// logic; there is no scripting surface behind it. Malformed or disallowed
// input yields an error, never a panic.
func Evaluate(input string) (interface{}, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	ast, err := parseExpression(tokens)
	if err != nil {
		return nil, err
	}
	return evalNode(ast)
}

// EvaluateBool evaluates the expression and reduces the result to a
// condition outcome via truthiness. On error the condition is false; the
// error travels with the result as data.
func EvaluateBool(input string) (bool, interface{}, error) {
	value, err := Evaluate(input)
	if err != nil {
		return false, nil, err
	}
	return Truthy(value), value, nil
}

// Truthy mirrors the coercion the rule language applies to condition
// values: false, zero, empty string and null are falsy.
func Truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

func evalNode(n node) (interface{}, error) {
	switch v := n.(type) {
	case literalNode:
		return v.value, nil
	case unaryNode:
		return evalUnary(v)
	case binaryNode:
		return evalBinary(v)
	default:
		return nil, evalError("unknown expression node")
	}
}

func evalUnary(n unaryNode) (interface{}, error) {
	operand, err := evalNode(n.operand)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case tokenNot:
		return !Truthy(operand), nil
	case tokenMinus:
		f, ok := operand.(float64)
		if !ok {
			return nil, evalError("unary minus requires a number")
		}
		return -f, nil
	default:
		return nil, evalError("unsupported unary operator")
	}
}

func evalBinary(n binaryNode) (interface{}, error) {
	left, err := evalNode(n.left)
	if err != nil {
		return nil, err
	}
	right, err := evalNode(n.right)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokenAnd:
		return Truthy(left) && Truthy(right), nil
	case tokenOr:
		return Truthy(left) || Truthy(right), nil
	case tokenEq:
		return looseEquals(left, right), nil
	case tokenNotEq:
		return !looseEquals(left, right), nil
	case tokenLt, tokenLte, tokenGt, tokenGte:
		return compareOrdered(left, right, n.op)
	case tokenPlus:
		return evalPlus(left, right)
	case tokenMinus, tokenStar, tokenSlash, tokenPercent:
		return evalArithmetic(left, right, n.op)
	default:
		return nil, evalError("unsupported binary operator")
	}
}

// looseEquals compares same-typed values; mismatched types are unequal
// rather than an error.
func looseEquals(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

func compareOrdered(a, b interface{}, op tokenKind) (interface{}, error) {
	if af, aok := a.(float64); aok {
		bf, bok := b.(float64)
		if !bok {
			return nil, evalError("cannot compare number with non-number")
		}
		switch op {
		case tokenLt:
			return af < bf, nil
		case tokenLte:
			return af <= bf, nil
		case tokenGt:
			return af > bf, nil
		default:
			return af >= bf, nil
		}
	}
	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		if !bok {
			return nil, evalError("cannot compare string with non-string")
		}
		switch op {
		case tokenLt:
			return as < bs, nil
		case tokenLte:
			return as <= bs, nil
		case tokenGt:
			return as > bs, nil
		default:
			return as >= bs, nil
		}
	}
	return nil, evalError("ordered comparison requires numbers or strings")
}

func evalPlus(a, b interface{}) (interface{}, error) {
	if af, ok := a.(float64); ok {
		if bf, ok := b.(float64); ok {
			return af + bf, nil
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as + bs, nil
		}
	}
	return nil, evalError("'+' requires two numbers or two strings")
}

func evalArithmetic(a, b interface{}, op tokenKind) (interface{}, error) {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if !aok || !bok {
		return nil, evalError("arithmetic requires numeric operands")
	}
	switch op {
	case tokenMinus:
		return af - bf, nil
	case tokenStar:
		return af * bf, nil
	case tokenSlash:
		if bf == 0 {
			return nil, evalError("division by zero")
		}
		return af / bf, nil
	default:
		if bf == 0 {
			return nil, evalError("modulo by zero")
		}
		return math.Mod(af, bf), nil
	}
}

func evalError(message string, args ...interface{}) error {
	return logging.NewError(logging.ErrorTypeEvaluation, fmt.Sprintf(message, args...), nil, nil)
}
