package parser

import (
	"fmt"
	"strings"

	"github.com/creativeprojects/imapmirror/lib"
)

type lexKind uint8

const (
	lexAtom lexKind = iota
	lexQuoted
	lexOpen
	lexClose
	lexLiteral
)

type lexeme struct {
	kind    lexKind
	value   string
	literal []byte
}

func malformed(raw, format string, a ...any) error {
	return fmt.Errorf("%w: %s in %q", lib.ErrMalformedResponse, fmt.Sprintf(format, a...), raw)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// lex splits the input into lexemes. Parenthesis balance is not verified here.
func lex(input string) ([]lexeme, error) {
	lexemes := make([]lexeme, 0, 8)
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case isSpace(c):
			i++
		case c == '(':
			lexemes = append(lexemes, lexeme{kind: lexOpen})
			i++
		case c == ')':
			lexemes = append(lexemes, lexeme{kind: lexClose})
			i++
		case c == '"':
			value, next, ok := scanQuoted(input, i+1)
			if !ok {
				return nil, malformed(input, "missing closing quote for string starting at %d", i)
			}
			lexemes = append(lexemes, lexeme{kind: lexQuoted, value: value})
			i = next
		default:
			end := scanAtom(input, i)
			lexemes = append(lexemes, lexeme{kind: lexAtom, value: input[i:end]})
			i = end
		}
	}
	return lexemes, nil
}

// scanQuoted reads a quoted string starting after the opening quote.
// It returns the unescaped value and the position after the closing quote.
func scanQuoted(input string, start int) (string, int, bool) {
	value := strings.Builder{}
	for i := start; i < len(input); i++ {
		switch input[i] {
		case '\\':
			if i+1 < len(input) {
				i++
				value.WriteByte(input[i])
			}
		case '"':
			return value.String(), i + 1, true
		default:
			value.WriteByte(input[i])
		}
	}
	return "", len(input), false
}

// scanAtom returns the end of the atom starting at start. Brackets are kept
// inside the atom so that section names like BODY[HEADER.FIELDS (DATE)] stay whole.
func scanAtom(input string, start int) int {
	brackets := 0
	i := start
	for ; i < len(input); i++ {
		c := input[i]
		if brackets > 0 {
			switch c {
			case '[':
				brackets++
			case ']':
				brackets--
			}
			continue
		}
		switch {
		case c == '[':
			brackets++
		case isSpace(c), c == '(', c == ')', c == '"':
			return i
		}
	}
	return i
}
