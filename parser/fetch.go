package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Names of the FETCH attributes decoded into Record fields
const (
	FieldUID    = "UID"
	FieldFlags  = "FLAGS"
	FieldSize   = "RFC822.SIZE"
	FieldHeader = "RFC822.HEADER"
	FieldBody   = "RFC822"
)

var literalMarker = regexp.MustCompile(`^\{(\d+)\}$`)

// Entry is one element of a FETCH reply: a bare string, or a string ending
// with a literal marker {n} paired with the literal content
type Entry struct {
	Text       string
	Literal    []byte
	HasLiteral bool
}

// TextEntry creates a bare string entry
func TextEntry(text string) Entry {
	return Entry{Text: text}
}

// LiteralEntry creates an entry carrying a literal
func LiteralEntry(text string, literal []byte) Entry {
	return Entry{Text: text, Literal: literal, HasLiteral: true}
}

func (e Entry) closesMessage() bool {
	return !e.HasLiteral && strings.HasSuffix(strings.TrimRight(e.Text, " \r\n"), ")")
}

// Record is the decoded content of one message from a FETCH reply
type Record struct {
	// Message sequence number
	SeqNum uint32
	// Unique identifier in the mailbox
	UID uint32
	// RFC822.SIZE
	Size uint32
	// Message flags
	Flags []string
	// RFC822.HEADER
	Header []byte
	// RFC822 (full message)
	Body []byte
	// Attributes not decoded into one of the fields above
	Fields  map[string]Token
	present map[string]bool
}

// Has returns true if the attribute was present in the reply
func (r *Record) Has(field string) bool {
	return r.present[strings.ToUpper(field)]
}

// Partition splits the reply into one group of entries per message. A message
// ends with a bare string entry finishing with a closing parenthesis.
func Partition(entries []Entry) [][]Entry {
	partitions := make([][]Entry, 0, 1)
	start := 0
	for i, entry := range entries {
		if entry.closesMessage() {
			partitions = append(partitions, entries[start:i+1])
			start = i + 1
		}
	}
	if start < len(entries) {
		partitions = append(partitions, entries[start:])
	}
	return partitions
}

// DecodeFetch returns one record per message found in the reply. A malformed
// message is skipped and reported in the returned error while the other
// records are still returned.
func DecodeFetch(entries []Entry) ([]*Record, error) {
	records := make([]*Record, 0, 1)
	var errs []error
	for _, partition := range Partition(entries) {
		if isBlank(partition) {
			continue
		}
		record, err := DecodeRecord(partition)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, record)
	}
	return records, errors.Join(errs...)
}

// DecodeRecord decodes the entries of a single message
func DecodeRecord(partition []Entry) (*Record, error) {
	stream, err := flatten(partition)
	if err != nil {
		return nil, err
	}
	raw := describe(partition)
	if len(stream) < 2 || stream[0].kind != lexAtom || stream[1].kind != lexOpen {
		return nil, malformed(raw, "expected message number followed by attribute list")
	}
	seqNum, err := strconv.ParseUint(stream[0].value, 10, 32)
	if err != nil {
		return nil, malformed(raw, "invalid message number %q", stream[0].value)
	}
	record := &Record{
		SeqNum:  uint32(seqNum),
		Fields:  make(map[string]Token),
		present: make(map[string]bool),
	}
	pos := 2
	for {
		if pos >= len(stream) {
			return nil, malformed(raw, "missing closing parenthesis")
		}
		if stream[pos].kind == lexClose {
			break
		}
		if stream[pos].kind != lexAtom {
			return nil, malformed(raw, "expected attribute name at position %d", pos)
		}
		key := strings.ToUpper(stream[pos].value)
		pos++
		if pos >= len(stream) {
			return nil, malformed(raw, "missing value for %s", key)
		}
		pos, err = record.decodeValue(key, stream, pos, raw)
		if err != nil {
			return nil, err
		}
	}
	return record, nil
}

// decodeValue reads the value of key starting at pos and returns the position after it
func (r *Record) decodeValue(key string, stream []lexeme, pos int, raw string) (int, error) {
	item := stream[pos]
	switch item.kind {
	case lexOpen:
		end, err := matchingClose(stream, pos, raw)
		if err != nil {
			return pos, err
		}
		list := buildList(stream[pos+1 : end])
		if key == FieldFlags {
			r.Flags = list.Strings()
		} else {
			r.Fields[key] = list
		}
		r.present[key] = true
		return end + 1, nil
	case lexLiteral:
		r.setBytes(key, item.literal)
		return pos + 1, nil
	case lexQuoted:
		r.setBytes(key, []byte(item.value))
		return pos + 1, nil
	case lexAtom:
		if strings.EqualFold(item.value, "NIL") {
			return pos + 1, nil
		}
		return pos + 1, r.setAtom(key, item.value, raw)
	}
	return pos, malformed(raw, "unexpected closing parenthesis after %s", key)
}

func (r *Record) setBytes(key string, value []byte) {
	r.present[key] = true
	switch key {
	case FieldHeader, "BODY[HEADER]", "BODY.PEEK[HEADER]":
		r.Header = value
		r.present[FieldHeader] = true
	case FieldBody, "BODY[]", "BODY.PEEK[]":
		r.Body = value
		r.present[FieldBody] = true
	default:
		r.Fields[key] = NewString(string(value))
	}
}

func (r *Record) setAtom(key, value, raw string) error {
	switch key {
	case FieldUID, FieldSize:
		number, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return malformed(raw, "invalid number %q for %s", value, key)
		}
		if key == FieldUID {
			r.UID = uint32(number)
		} else {
			r.Size = uint32(number)
		}
	case FieldHeader, FieldBody:
		r.setBytes(key, []byte(value))
		return nil
	default:
		r.Fields[key] = NewAtom(value)
	}
	r.present[key] = true
	return nil
}

// flatten lexes the text of all the entries, replacing each literal marker by the literal content
func flatten(partition []Entry) ([]lexeme, error) {
	stream := make([]lexeme, 0, 16)
	for _, entry := range partition {
		lexemes, err := lex(entry.Text)
		if err != nil {
			return nil, err
		}
		if entry.HasLiteral {
			last := len(lexemes) - 1
			if last < 0 || lexemes[last].kind != lexAtom || !literalMarker.MatchString(lexemes[last].value) {
				return nil, malformed(entry.Text, "literal content without a {size} marker")
			}
			lexemes[last] = lexeme{kind: lexLiteral, literal: entry.Literal}
		}
		stream = append(stream, lexemes...)
	}
	return stream, nil
}

func matchingClose(stream []lexeme, open int, raw string) (int, error) {
	depth := 0
	for i := open; i < len(stream); i++ {
		switch stream[i].kind {
		case lexOpen:
			depth++
		case lexClose:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, malformed(raw, "missing closing parenthesis")
}

// buildList converts balanced lexemes into a list token
func buildList(lexemes []lexeme) Token {
	stack := [][]Token{make([]Token, 0, len(lexemes))}
	for _, item := range lexemes {
		top := len(stack) - 1
		switch item.kind {
		case lexOpen:
			stack = append(stack, make([]Token, 0))
		case lexClose:
			list := stack[top]
			stack = stack[:top]
			stack[top-1] = append(stack[top-1], NewList(list...))
		case lexQuoted:
			stack[top] = append(stack[top], NewString(item.value))
		case lexLiteral:
			stack[top] = append(stack[top], NewString(string(item.literal)))
		default:
			stack[top] = append(stack[top], NewAtom(item.value))
		}
	}
	return NewList(stack[0]...)
}

func isBlank(partition []Entry) bool {
	for _, entry := range partition {
		if entry.HasLiteral || strings.TrimSpace(entry.Text) != "" {
			return false
		}
	}
	return true
}

func describe(partition []Entry) string {
	parts := make([]string, len(partition))
	for i, entry := range partition {
		if entry.HasLiteral {
			parts[i] = fmt.Sprintf("%s<%d bytes>", entry.Text, len(entry.Literal))
			continue
		}
		parts[i] = entry.Text
	}
	return strings.Join(parts, "")
}
