// ruleflow/pkg/dsl/structs.go
package dsl

// ClauseType tags a parsed DSL line.
type ClauseType string

const (
	ClauseWhen ClauseType = "WHEN"
	ClauseAnd  ClauseType = "AND"
	ClauseOr   ClauseType = "OR"
	ClauseThen ClauseType = "THEN"
)

// ConditionClause is one WHEN/AND/OR line before the first THEN. Expression
// holds the raw text after the keyword.
type ConditionClause struct {
	Type       ClauseType `json:"type"`
	Expression string     `json:"expression"`
}

// ActionClause is the THEN line or an AND line after it.
type ActionClause struct {
	Type       ClauseType `json:"type"`
	Expression string     `json:"expression"`
}

// ParsedRule is the engine-internal form of a rule's DSL text. It is rebuilt
// on every evaluation and never persisted; callers may cache it keyed by
// rule id plus a hash of the DSL text.
type ParsedRule struct {
	Conditions []ConditionClause `json:"conditions"`
	Actions    []ActionClause    `json:"actions"`
}
