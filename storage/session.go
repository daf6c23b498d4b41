package storage

import (
	"fmt"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/mailbox"
	"github.com/creativeprojects/imapmirror/parser"
)

// Session is an authenticated connection to a mail server
type Session interface {
	// List returns the content of the LIST responses for all the mailboxes
	List() ([]string, error)
	// Delimiter used by the server to construct a path of mailboxes with its children
	Delimiter() string
	// Select opens the mailbox and returns its number of messages
	Select(name string, readOnly bool) (uint32, error)
	// Fetch returns the raw reply of a FETCH command on the selected mailbox
	Fetch(seqset, items string) ([]parser.Entry, error)
	// Append adds a message to the mailbox
	Append(name string, flags []string, body []byte) error
	Create(name string) error
	Delete(name string) error
	// Close the session
	Close() error
}

// ListMailboxes returns the mailboxes of the session, sorted with mailbox.Less.
// A LIST response that cannot be decoded is reported to the logger and skipped.
func ListMailboxes(session Session, logger lib.Logger) ([]mailbox.Info, error) {
	logger = lib.OrNoLog(logger)
	lines, err := session.List()
	if err != nil {
		return nil, fmt.Errorf("cannot list mailboxes: %w", err)
	}
	mailboxes := make([]mailbox.Info, 0, len(lines))
	for _, line := range lines {
		info, err := mailbox.ParseListResponse(line)
		if err != nil {
			logger.Printf("skipping mailbox: %v", err)
			continue
		}
		mailboxes = append(mailboxes, info)
	}
	mailbox.Sort(mailboxes)
	return mailboxes, nil
}

// SelectMailboxes returns the mailboxes matching the include patterns of the filter
// followed by the extra patterns, in the order of the patterns. Excluded mailboxes are
// never returned. Without any pattern, all the mailboxes not excluded are selected.
func SelectMailboxes(mailboxes []mailbox.Info, filter lib.Filter, patterns ...string) []mailbox.Info {
	patterns = append(append(make([]string, 0, len(filter.Include)+len(patterns)), filter.Include...), patterns...)
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	names := make([]string, len(mailboxes))
	byName := make(map[string]mailbox.Info, len(mailboxes))
	for i, info := range mailboxes {
		names[i] = info.Name
		byName[info.Name] = info
	}
	seen := make(map[string]bool)
	result := make([]mailbox.Info, 0, len(mailboxes))
	for _, pattern := range patterns {
		for _, name := range filter.Select(pattern, names) {
			if seen[name] {
				continue
			}
			seen[name] = true
			result = append(result, byName[name])
		}
	}
	return result
}
