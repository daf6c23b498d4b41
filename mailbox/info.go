package mailbox

import (
	"fmt"
	"strings"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/parser"
	"github.com/emersion/go-imap/utf7"
)

// Info describes a mailbox from a LIST response. It is not modified once built.
type Info struct {
	// The mailbox name.
	Name string
	// The server's path separator.
	Delimiter string
	// The raw attributes as sent by the server.
	Attributes []string
	// Flags derived from the attributes.
	Flags Flags
}

// NewInfo builds the mailbox information, deriving the flags from the attributes
func NewInfo(name, delimiter string, attributes ...string) Info {
	return Info{
		Name:       name,
		Delimiter:  delimiter,
		Attributes: attributes,
		Flags:      FlagsFromAttributes(attributes),
	}
}

// ParseListResponse decodes the content of a LIST response line, like
//
//	(\HasNoChildren) "/" "INBOX"
//
// The name is decoded from modified UTF-7.
func ParseListResponse(line string) (Info, error) {
	tokens, err := parser.Parse(line)
	if err != nil {
		return Info{}, err
	}
	if len(tokens) != 3 || !tokens[0].IsList || tokens[1].IsList || tokens[2].IsList {
		return Info{}, fmt.Errorf("%w: expected (attributes) delimiter name in %q", lib.ErrMalformedResponse, line)
	}
	delimiter := tokens[1].Atom
	if tokens[1].IsNil() {
		delimiter = ""
	}
	name := tokens[2].Atom
	if decoded, err := utf7.Encoding.NewDecoder().String(name); err == nil {
		name = decoded
	}
	if strings.EqualFold(name, "INBOX") {
		name = "INBOX"
	}
	return NewInfo(name, delimiter, tokens[0].Strings()...), nil
}

// Letters is the 6 columns flag code of the mailbox
func (i Info) Letters() string {
	return i.Flags.Letters()
}

// Selectable returns false for a mailbox with the \Noselect attribute
func (i Info) Selectable() bool {
	return !i.Flags.Has(FlagNoSelect)
}

// ChangeDelimiter converts a hierarchical name using one delimiter into the same
// hierarchy using another delimiter
func ChangeDelimiter(name, delimiter, newDelimiter string) string {
	if delimiter == "" || newDelimiter == "" || delimiter == newDelimiter {
		return name
	}
	return strings.Join(strings.Split(name, delimiter), newDelimiter)
}
