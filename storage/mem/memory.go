// Package mem is a Session keeping the mailboxes in memory, answering
// like an IMAP server would.
package mem

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/parser"
	"github.com/emersion/go-imap"
)

const Delimiter = "."

type Session struct {
	data     map[string]*memMailbox
	log      lib.Logger
	selected string
	// Number of calls per command, for inspection
	Calls map[string]int
	// AppendError is returned by Append when set
	AppendError error
}

func New() *Session {
	return NewWithLogger(nil)
}

func NewWithLogger(logger lib.Logger) *Session {
	session := &Session{
		data:  make(map[string]*memMailbox),
		log:   lib.OrNoLog(logger),
		Calls: make(map[string]int),
	}
	session.data["INBOX"] = &memMailbox{
		uidValidity: uint32(time.Now().Unix()),
	}
	return session
}

func (s *Session) Close() error {
	s.data = make(map[string]*memMailbox)
	s.selected = ""
	return nil
}

func (s *Session) Delimiter() string {
	return Delimiter
}

func (s *Session) List() ([]string, error) {
	s.Calls["LIST"]++
	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, len(names))
	for i, name := range names {
		attributes := make([]parser.Token, 0, len(s.data[name].attributes))
		for _, attribute := range s.data[name].attributes {
			attributes = append(attributes, parser.NewAtom(attribute))
		}
		lines[i] = parser.Join([]parser.Token{
			parser.NewList(attributes...),
			parser.NewString(Delimiter),
			parser.NewString(name),
		})
	}
	return lines, nil
}

// AddMailbox creates a mailbox with attributes
func (s *Session) AddMailbox(name string, attributes ...string) {
	s.data[name] = &memMailbox{
		attributes:  attributes,
		uidValidity: uint32(time.Now().Unix()),
	}
}

func (s *Session) Create(name string) error {
	s.Calls["CREATE"]++
	if _, ok := s.data[name]; ok {
		return fmt.Errorf("%w: %s", lib.ErrMailboxExists, name)
	}
	s.AddMailbox(name)
	return nil
}

func (s *Session) Delete(name string) error {
	s.Calls["DELETE"]++
	if _, ok := s.data[name]; !ok {
		return fmt.Errorf("%w: %s", lib.ErrMailboxNotFound, name)
	}
	delete(s.data, name)
	if s.selected == name {
		s.selected = ""
	}
	return nil
}

func (s *Session) Select(name string, readOnly bool) (uint32, error) {
	s.Calls["SELECT"]++
	mbox, ok := s.data[name]
	if !ok {
		s.selected = ""
		return 0, fmt.Errorf("%w: %s", lib.ErrMailboxNotFound, name)
	}
	s.selected = name
	return uint32(len(mbox.messages)), nil
}

func (s *Session) Append(name string, flags []string, body []byte) error {
	s.Calls["APPEND"]++
	if s.AppendError != nil {
		return s.AppendError
	}
	mbox, ok := s.data[name]
	if !ok {
		return fmt.Errorf("%w: %s", lib.ErrMailboxNotFound, name)
	}
	for _, flag := range flags {
		if strings.EqualFold(flag, imap.RecentFlag) {
			return fmt.Errorf("flag %s cannot be set by a client", flag)
		}
	}
	content := make([]byte, len(body))
	copy(content, body)
	uid := mbox.newMessage(content, append([]string{}, flags...))
	s.log.Printf("Message saved: mailbox=%q uid=%d size=%d flags=%v", name, uid, len(body), flags)
	return nil
}

// Fetch answers with the entries a server would send: one bare string per message,
// or a string ending with a literal marker followed by the literal for each
// header or message content
func (s *Session) Fetch(seqset, items string) ([]parser.Entry, error) {
	s.Calls["FETCH"]++
	s.Calls["FETCH "+items]++
	if s.selected == "" {
		return nil, lib.ErrNotSelected
	}
	mbox := s.data[s.selected]
	set, err := imap.ParseSeqSet(seqset)
	if err != nil {
		return nil, fmt.Errorf("invalid sequence set %q: %w", seqset, err)
	}
	names, err := fetchItems(items)
	if err != nil {
		return nil, err
	}

	entries := make([]parser.Entry, 0)
	count := uint32(len(mbox.messages))
	for index, msg := range mbox.messages {
		seqNum := uint32(index + 1)
		if !set.Contains(seqNum) && !(seqNum == count && set.Contains(0)) {
			continue
		}
		text := strconv.FormatUint(uint64(seqNum), 10) + " ("
		for i, name := range names {
			if i > 0 {
				text += " "
			}
			switch name {
			case "UID":
				text += "UID " + strconv.FormatUint(uint64(msg.uid), 10)
			case "RFC822.SIZE":
				text += "RFC822.SIZE " + strconv.Itoa(len(msg.content))
			case "FLAGS":
				flags := make([]parser.Token, len(msg.flags))
				for j, flag := range msg.flags {
					flags[j] = parser.NewAtom(flag)
				}
				text += "FLAGS " + parser.NewList(flags...).String()
			case "RFC822.HEADER", "RFC822", "BODY[]", "BODY.PEEK[]", "BODY[HEADER]", "BODY.PEEK[HEADER]":
				content := msg.content
				if strings.Contains(name, "HEADER") {
					content = msg.header()
				}
				key := strings.Replace(name, ".PEEK", "", 1)
				entries = append(entries, parser.LiteralEntry(text+key+" {"+strconv.Itoa(len(content))+"}", content))
				text = ""
			default:
				return nil, fmt.Errorf("unsupported fetch item %q", name)
			}
		}
		entries = append(entries, parser.TextEntry(text+")"))
	}
	return entries, nil
}

func fetchItems(items string) ([]string, error) {
	tokens, err := parser.Parse(items)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 1 && tokens[0].IsList {
		tokens = tokens[0].List
	}
	names := make([]string, len(tokens))
	for i, token := range tokens {
		names[i] = strings.ToUpper(token.Atom)
	}
	return names, nil
}

// GenerateFakeEmails fills the mailbox (created if needed) with random messages
func (s *Session) GenerateFakeEmails(name string, count uint32, minSize, maxSize int) {
	if _, ok := s.data[name]; !ok {
		s.AddMailbox(name)
	}
	var i uint32
	for i = 1; i <= count; i++ {
		msg := lib.GenerateEmail("user1@example.com", "user2@example.com", i, minSize, maxSize)
		s.data[name].newMessage(msg, lib.GenerateFlags(5))
	}
}

// AddMessage stores a message directly in the mailbox and returns its UID
func (s *Session) AddMessage(name string, content []byte, flags ...string) (uint32, error) {
	mbox, ok := s.data[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", lib.ErrMailboxNotFound, name)
	}
	return mbox.newMessage(content, flags), nil
}

// Messages returns the content of the messages of the mailbox in sequence order
func (s *Session) Messages(name string) [][]byte {
	mbox, ok := s.data[name]
	if !ok {
		return nil
	}
	contents := make([][]byte, len(mbox.messages))
	for i, msg := range mbox.messages {
		contents[i] = msg.content
	}
	return contents
}

// Flags returns the flags of the messages of the mailbox in sequence order
func (s *Session) Flags(name string) [][]string {
	mbox, ok := s.data[name]
	if !ok {
		return nil
	}
	flags := make([][]string, len(mbox.messages))
	for i, msg := range mbox.messages {
		flags[i] = msg.flags
	}
	return flags
}

// Expunge removes the message at the sequence number (starting at 1)
func (s *Session) Expunge(name string, seqNum uint32) {
	mbox, ok := s.data[name]
	if !ok || seqNum == 0 || int(seqNum) > len(mbox.messages) {
		return
	}
	mbox.messages = append(mbox.messages[:seqNum-1], mbox.messages[seqNum:]...)
}
