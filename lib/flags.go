package lib

import (
	"strings"

	"github.com/emersion/go-imap"
)

// StripRecentFlag removes the \Recent flag: it's reserved to the server and cannot be set by a client
func StripRecentFlag(source []string) []string {
	output := make([]string, 0, len(source))
	for _, flag := range source {
		if strings.EqualFold(flag, imap.RecentFlag) {
			continue
		}
		output = append(output, flag)
	}
	return output
}
