// ruleflow/pkg/expr/lexer.go

package expr

import (
	"fmt"
	"strings"
	"unicode"

	"rulehub/ruleflow/pkg/logging"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenString
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenPercent
	tokenEq
	tokenNotEq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex tokenizes an interpolated expression. The token set is closed:
// anything outside it (semicolons, assignments, commas, backticks) is a
// lexing error so the evaluator fails safely instead of guessing.
func lex(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		c := runes[i]

		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsDigit(c) || (c == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, token{kind: tokenNumber, text: string(runes[start:i]), pos: start})
		case c == '"' || c == '\'':
			quote := c
			i++
			var sb strings.Builder
			closed := false
			for i < len(runes) {
				if runes[i] == '\\' && i+1 < len(runes) {
					sb.WriteRune(runes[i+1])
					i += 2
					continue
				}
				if runes[i] == quote {
					closed = true
					i++
					break
				}
				sb.WriteRune(runes[i])
				i++
			}
			if !closed {
				return nil, lexError(input, "unterminated string literal")
			}
			tokens = append(tokens, token{kind: tokenString, text: sb.String()})
		case unicode.IsLetter(c) || c == '_':
			start := i
			// Dotted identifiers lex as one token so an uninterpolated
			// variable reference produces a single clear error.
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_' || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: string(runes[start:i]), pos: start})
		case c == '+':
			tokens = append(tokens, token{kind: tokenPlus, text: "+"})
			i++
		case c == '-':
			tokens = append(tokens, token{kind: tokenMinus, text: "-"})
			i++
		case c == '*':
			tokens = append(tokens, token{kind: tokenStar, text: "*"})
			i++
		case c == '/':
			tokens = append(tokens, token{kind: tokenSlash, text: "/"})
			i++
		case c == '%':
			tokens = append(tokens, token{kind: tokenPercent, text: "%"})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")"})
			i++
		case c == '=':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenEq, text: "=="})
				i += 2
			} else {
				return nil, lexError(input, "assignment is not allowed")
			}
		case c == '!':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenNotEq, text: "!="})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenNot, text: "!"})
				i++
			}
		case c == '<':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenLte, text: "<="})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenLt, text: "<"})
				i++
			}
		case c == '>':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenGte, text: ">="})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenGt, text: ">"})
				i++
			}
		case c == '&':
			if i+1 < len(runes) && runes[i+1] == '&' {
				tokens = append(tokens, token{kind: tokenAnd, text: "&&"})
				i += 2
			} else {
				return nil, lexError(input, "single '&' is not a valid operator")
			}
		case c == '|':
			if i+1 < len(runes) && runes[i+1] == '|' {
				tokens = append(tokens, token{kind: tokenOr, text: "||"})
				i += 2
			} else {
				return nil, lexError(input, "single '|' is not a valid operator")
			}
		default:
			return nil, lexError(input, fmt.Sprintf("disallowed character %q", string(c)))
		}
	}

	tokens = append(tokens, token{kind: tokenEOF})
	return tokens, nil
}

func lexError(input, message string) error {
	return logging.NewError(logging.ErrorTypeEvaluation, message, nil, map[string]interface{}{
		"expression": input,
	})
}
