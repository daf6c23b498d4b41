package storage

import "fmt"

// Result of the synchronization of one mailbox
type Result struct {
	Mailbox   string
	Direction string
	// Number of messages in the source
	Messages    int
	Transferred int
	Skipped     int
	// Number of messages which failed to transfer
	Failed int
	// Err is the error which stopped the synchronization of the mailbox
	Err error
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Mailbox, r.Err)
	}
	summary := fmt.Sprintf("%s: %d messages, %d transferred, %d skipped", r.Mailbox, r.Messages, r.Transferred, r.Skipped)
	if r.Failed > 0 {
		summary += fmt.Sprintf(", %d failed", r.Failed)
	}
	return summary
}

// OK returns true when the mailbox was fully synchronized
func (r Result) OK() bool {
	return r.Err == nil && r.Failed == 0
}

// Failed returns true if any of the mailboxes failed
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.OK() {
			return true
		}
	}
	return false
}
