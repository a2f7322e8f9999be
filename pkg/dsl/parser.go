// ruleflow/pkg/dsl/parser.go

package dsl

import (
	"fmt"
	"strings"

	"rulehub/ruleflow/pkg/logging"
)

// ParseError reports a structural problem in the DSL text. A rule whose DSL
// fails to parse is treated as failed for that invocation; the batch goes on.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func newParseError(line int, message string) *ParseError {
	return &ParseError{Line: line, Message: message}
}

// Parse turns rule DSL text into a ParsedRule. The grammar is line-oriented
// and order-significant:
//
//	rule := WHEN-clause (AND-clause | OR-clause)* THEN-clause (AND-action)*
//
// Lines are trimmed, blank lines dropped. A single left-to-right pass tracks
// whether we are still parsing conditions; the first THEN flips it. An OR
// line after that flip is a validation error, not a silent drop, since
// business-rule semantics depend on clause placement.
func Parse(dslText string) (*ParsedRule, error) {
	logging.Logger.Debug().Str("dsl", dslText).Msg("Parsing rule DSL")

	if strings.TrimSpace(dslText) == "" {
		return nil, newParseError(0, "empty rule text")
	}

	parsed := &ParsedRule{}
	parsingConditions := true

	for i, rawLine := range strings.Split(dslText, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		lineNo := i + 1

		switch {
		case strings.HasPrefix(line, "WHEN "):
			if !parsingConditions {
				return nil, newParseError(lineNo, "WHEN clause after THEN")
			}
			if hasWhen(parsed) {
				return nil, newParseError(lineNo, "multiple WHEN clauses")
			}
			parsed.Conditions = append(parsed.Conditions, ConditionClause{
				Type:       ClauseWhen,
				Expression: strings.TrimSpace(strings.TrimPrefix(line, "WHEN ")),
			})
		case strings.HasPrefix(line, "AND "):
			expr := strings.TrimSpace(strings.TrimPrefix(line, "AND "))
			if parsingConditions {
				parsed.Conditions = append(parsed.Conditions, ConditionClause{Type: ClauseAnd, Expression: expr})
			} else {
				parsed.Actions = append(parsed.Actions, ActionClause{Type: ClauseAnd, Expression: expr})
			}
		case strings.HasPrefix(line, "OR "):
			if !parsingConditions {
				return nil, newParseError(lineNo, "OR clause is not allowed after THEN")
			}
			parsed.Conditions = append(parsed.Conditions, ConditionClause{
				Type:       ClauseOr,
				Expression: strings.TrimSpace(strings.TrimPrefix(line, "OR ")),
			})
		case strings.HasPrefix(line, "THEN "):
			parsingConditions = false
			parsed.Actions = append(parsed.Actions, ActionClause{
				Type:       ClauseThen,
				Expression: strings.TrimSpace(strings.TrimPrefix(line, "THEN ")),
			})
		default:
			return nil, newParseError(lineNo, fmt.Sprintf("unrecognized line: %q", line))
		}
	}

	if err := validate(parsed); err != nil {
		logging.Logger.Debug().Err(err).Msg("Rule DSL failed validation")
		return nil, err
	}

	return parsed, nil
}

func hasWhen(p *ParsedRule) bool {
	for _, c := range p.Conditions {
		if c.Type == ClauseWhen {
			return true
		}
	}
	return false
}

// validate enforces the structural invariant: exactly one WHEN, at least one
// THEN, and the WHEN comes first among the conditions.
func validate(p *ParsedRule) error {
	if !hasWhen(p) {
		return newParseError(0, "missing WHEN clause")
	}
	if len(p.Conditions) == 0 || p.Conditions[0].Type != ClauseWhen {
		return newParseError(0, "WHEN must be the first clause")
	}
	if len(p.Actions) == 0 {
		return newParseError(0, "missing THEN clause")
	}
	return nil
}

// Source re-serializes the parsed rule back to DSL text. Parse(p.Source())
// yields a structurally identical ParsedRule, which is what rule-authoring
// surfaces rely on when round-tripping edits.
func (p *ParsedRule) Source() string {
	var b strings.Builder
	for _, c := range p.Conditions {
		b.WriteString(string(c.Type))
		b.WriteString(" ")
		b.WriteString(c.Expression)
		b.WriteString("\n")
	}
	for _, a := range p.Actions {
		b.WriteString(string(a.Type))
		b.WriteString(" ")
		b.WriteString(a.Expression)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
