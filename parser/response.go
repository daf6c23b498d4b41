package parser

import (
	"strings"
)

// Token is a node of a parsed response: either an atom (bare word, number or quoted string)
// or a parenthesised list of tokens
type Token struct {
	Atom   string
	Quoted bool
	IsList bool
	List   []Token
}

// NewAtom creates a bare atom token
func NewAtom(value string) Token {
	return Token{Atom: value}
}

// NewString creates a quoted string token
func NewString(value string) Token {
	return Token{Atom: value, Quoted: true}
}

// NewList creates a list token
func NewList(tokens ...Token) Token {
	if tokens == nil {
		tokens = []Token{}
	}
	return Token{IsList: true, List: tokens}
}

// Parse decodes one response line into tokens, keeping their order and nesting.
// An unmatched parenthesis or quote returns an error wrapping lib.ErrMalformedResponse.
func Parse(line string) ([]Token, error) {
	lexemes, err := lex(strings.TrimSpace(line))
	if err != nil {
		return nil, err
	}
	stack := [][]Token{make([]Token, 0, len(lexemes))}
	for _, item := range lexemes {
		top := len(stack) - 1
		switch item.kind {
		case lexOpen:
			stack = append(stack, make([]Token, 0))
		case lexClose:
			if top == 0 {
				return nil, malformed(line, "unexpected closing parenthesis")
			}
			list := stack[top]
			stack = stack[:top]
			stack[top-1] = append(stack[top-1], NewList(list...))
		case lexQuoted:
			stack[top] = append(stack[top], NewString(item.value))
		default:
			stack[top] = append(stack[top], NewAtom(item.value))
		}
	}
	if len(stack) != 1 {
		return nil, malformed(line, "missing %d closing parenthesis", len(stack)-1)
	}
	return stack[0], nil
}

// IsNil returns true for the NIL atom
func (t Token) IsNil() bool {
	return !t.IsList && !t.Quoted && strings.EqualFold(t.Atom, "NIL")
}

// Strings returns the elements of a list as strings (nested lists are rendered back to text).
// An atom returns a slice of itself.
func (t Token) Strings() []string {
	if !t.IsList {
		return []string{t.Atom}
	}
	values := make([]string, len(t.List))
	for i, token := range t.List {
		if token.IsList {
			values[i] = token.String()
			continue
		}
		values[i] = token.Atom
	}
	return values
}

// String renders the token back using single spaces and matching delimiters
func (t Token) String() string {
	if t.IsList {
		return "(" + Join(t.List) + ")"
	}
	if t.Quoted || needsQuotes(t.Atom) {
		return Quote(t.Atom)
	}
	return t.Atom
}

// Join renders a sequence of tokens separated by a single space
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, token := range tokens {
		parts[i] = token.String()
	}
	return strings.Join(parts, " ")
}

// Quote returns value as a quoted string, escaping quotes and backslashes
func Quote(value string) string {
	return `"` + quoteEscaper.Replace(value) + `"`
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func needsQuotes(value string) bool {
	if value == "" {
		return true
	}
	if index := strings.IndexByte(value, '['); index > 0 {
		// section names carry their own brackets
		value = value[:index]
	}
	return strings.ContainsAny(value, " \t\r\n()\"")
}
