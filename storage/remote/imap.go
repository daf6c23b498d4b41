package remote

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/creativeprojects/imapmirror/mailbox"
	"github.com/creativeprojects/imapmirror/parser"
	"github.com/emersion/go-imap/utf7"
)

const defaultDelimiter = "/"

var (
	fetchPrefix  = regexp.MustCompile(`(?i)^\* (\d+) FETCH `)
	existsSuffix = regexp.MustCompile(`(?i)^\* (\d+) EXISTS$`)
)

// NewImap connects and logs into the server
func NewImap(cfg Config) (*Imap, error) {
	session, err := Dial(cfg)
	if err != nil {
		return nil, err
	}
	err = session.Login(cfg.Username, cfg.Password, cfg.AuthType)
	if err != nil {
		session.conn.Close()
		return nil, err
	}
	return session, nil
}

func (i *Imap) Close() error {
	i.log.Print("Closing connection")
	_, err := i.execute("LOGOUT", nil)
	closeErr := i.conn.Close()
	if err != nil {
		return err
	}
	return closeErr
}

// Capabilities returns the capabilities announced by the server
func (i *Imap) Capabilities() ([]string, error) {
	untagged, err := i.execute("CAPABILITY", nil)
	if err != nil {
		return nil, err
	}
	capabilities := make([]string, 0)
	for _, entries := range untagged {
		fields := strings.Fields(entries[0].Text)
		if len(fields) < 2 || !strings.EqualFold(fields[1], "CAPABILITY") {
			continue
		}
		capabilities = append(capabilities, fields[2:]...)
	}
	i.capabilities = capabilities
	return capabilities, nil
}

// List returns the content of the LIST responses, mailbox names being
// converted to quoted strings when sent as literals
func (i *Imap) List() ([]string, error) {
	lines, err := i.list(`LIST "" "*"`)
	if err != nil {
		return nil, err
	}
	if i.delimiter == "" {
		for _, line := range lines {
			info, err := mailbox.ParseListResponse(line)
			if err == nil && info.Delimiter != "" {
				i.delimiter = info.Delimiter
				break
			}
		}
	}
	return lines, nil
}

func (i *Imap) list(command string) ([]string, error) {
	untagged, err := i.execute(command, nil)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(untagged))
	for _, entries := range untagged {
		if line, ok := listLine(entries); ok {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// listLine returns the attributes, delimiter and name of a LIST response
func listLine(entries []parser.Entry) (string, bool) {
	const prefix = "* LIST "
	if len(entries) == 0 || len(entries[0].Text) < len(prefix) || !strings.EqualFold(entries[0].Text[:len(prefix)], prefix) {
		return "", false
	}
	line := strings.Builder{}
	for index, entry := range entries {
		text := entry.Text
		if index == 0 {
			text = text[len(prefix):]
		}
		if !entry.HasLiteral {
			line.WriteString(text)
			continue
		}
		line.WriteString(literalSuffix.ReplaceAllString(text, ""))
		line.WriteString(parser.Quote(string(entry.Literal)))
	}
	return line.String(), true
}

// Delimiter used by the server to separate the levels of the hierarchy
func (i *Imap) Delimiter() string {
	if i.delimiter != "" {
		return i.delimiter
	}
	lines, err := i.list(`LIST "" ""`)
	if err == nil && len(lines) > 0 {
		info, err := mailbox.ParseListResponse(lines[0])
		if err == nil && info.Delimiter != "" {
			i.delimiter = info.Delimiter
			return i.delimiter
		}
	}
	i.log.Printf("cannot find the hierarchy delimiter, using %q", defaultDelimiter)
	return defaultDelimiter
}

// Select opens the mailbox (read-only with EXAMINE) and returns its number of messages
func (i *Imap) Select(name string, readOnly bool) (uint32, error) {
	command := "SELECT "
	if readOnly {
		command = "EXAMINE "
	}
	untagged, err := i.execute(command+quoteName(name), nil)
	if err != nil {
		return 0, err
	}
	var count uint32
	for _, entries := range untagged {
		match := existsSuffix.FindStringSubmatch(entries[0].Text)
		if match == nil {
			continue
		}
		exists, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid number of messages in %q: %w", entries[0].Text, err)
		}
		count = uint32(exists)
	}
	return count, nil
}

// Fetch returns the FETCH responses of the messages, each one starting with
// the message sequence number followed by the list of attributes
func (i *Imap) Fetch(seqset, items string) ([]parser.Entry, error) {
	untagged, err := i.execute("FETCH "+seqset+" "+items, nil)
	if err != nil {
		return nil, err
	}
	reply := make([]parser.Entry, 0, len(untagged))
	for _, entries := range untagged {
		match := fetchPrefix.FindStringSubmatch(entries[0].Text)
		if match == nil {
			continue
		}
		first := entries[0]
		first.Text = match[1] + " " + first.Text[len(match[0]):]
		reply = append(reply, first)
		reply = append(reply, entries[1:]...)
	}
	return reply, nil
}

// Append adds a message to the mailbox
func (i *Imap) Append(name string, flags []string, body []byte) error {
	list := make([]parser.Token, len(flags))
	for index, flag := range flags {
		list[index] = parser.NewAtom(flag)
	}
	command := fmt.Sprintf("APPEND %s %s {%d}", quoteName(name), parser.NewList(list...).String(), len(body))
	sent := false
	_, err := i.execute(command, func(string) ([]byte, error) {
		if sent {
			return nil, fmt.Errorf("APPEND: unexpected continuation request")
		}
		sent = true
		return body, nil
	})
	if err != nil {
		return fmt.Errorf("cannot append message to %q (size=%d flags=%v): %w", name, len(body), flags, err)
	}
	return nil
}

func (i *Imap) Create(name string) error {
	_, err := i.execute("CREATE "+quoteName(name), nil)
	return err
}

func (i *Imap) Delete(name string) error {
	_, err := i.execute("DELETE "+quoteName(name), nil)
	return err
}

// quoteName encodes the mailbox name into a quoted modified UTF-7 string
func quoteName(name string) string {
	if strings.EqualFold(name, "INBOX") {
		name = "INBOX"
	}
	encoded, err := utf7.Encoding.NewEncoder().String(name)
	if err != nil {
		encoded = name
	}
	return parser.Quote(encoded)
}
