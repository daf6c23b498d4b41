package mailbox

import (
	"sort"
	"strings"
)

var specialNames = map[string]bool{
	"INBOX":            true,
	"Drafts":           true,
	"Junk":             true,
	"Sent":             true,
	"Trash":            true,
	"Archive":          true,
	"Deleted Messages": true,
	"Sent Messages":    true,
}

// IsSpecialName returns true for a well-known mailbox name
func IsSpecialName(name string) bool {
	if strings.EqualFold(name, "INBOX") {
		return true
	}
	return specialNames[name]
}

// Less orders mailboxes with a special use first, then the well-known names,
// then by name
func Less(a, b Info) bool {
	sa, sb := a.Flags.Special(), b.Flags.Special()
	if sa != sb {
		return sa > sb
	}
	return LessName(a.Name, b.Name)
}

// LessName orders the well-known names first, then by name
func LessName(a, b string) bool {
	sa, sb := IsSpecialName(a), IsSpecialName(b)
	if sa != sb {
		return sa
	}
	return a < b
}

// Sort the mailboxes using Less
func Sort(mailboxes []Info) {
	sort.SliceStable(mailboxes, func(i, j int) bool {
		return Less(mailboxes[i], mailboxes[j])
	})
}

// SortNames sorts the names using LessName
func SortNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return LessName(names[i], names[j])
	})
}
