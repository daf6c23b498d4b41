package cmd

import (
	"fmt"

	"github.com/creativeprojects/imapmirror/mailbox"
	"github.com/creativeprojects/imapmirror/parser"
	"github.com/creativeprojects/imapmirror/storage"
	"github.com/creativeprojects/imapmirror/term"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const itemsSummary = "(UID RFC822.SIZE RFC822.HEADER)"

var listCmd = &cobra.Command{
	Use:   "list [user@host] [mailboxes...]",
	Short: "Display the messages of the mailboxes (INBOX by default)",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	account, names, err := resolveAccount(cmd, args)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		names = []string{"INBOX"}
	}
	session, err := connect(account)
	if err != nil {
		return err
	}
	defer session.Close()

	failed := false
	for _, name := range names {
		if err := listMessages(session, name, global.longForm); err != nil {
			term.Error(err)
			failed = true
		}
	}
	if failed {
		return errMailboxFailures
	}
	return nil
}

func listMessages(session storage.Session, name string, longForm bool) error {
	count, err := session.Select(name, true)
	if err != nil {
		return fmt.Errorf("cannot select %q: %w", name, err)
	}
	term.Printf("\n%s: %d messages\n", name, count)
	if count == 0 {
		return nil
	}
	entries, err := session.Fetch("1:*", itemsSummary)
	if err != nil {
		return fmt.Errorf("cannot fetch messages of %q: %w", name, err)
	}
	records, err := parser.DecodeFetch(entries)
	if err != nil {
		term.Warnf("%s: %v", name, err)
	}

	if !longForm {
		term.Printf("%8s  %-40.40s  %-40.40s  %-40.40s\n", "UID", "Subject", "From", "Date")
	}
	for _, record := range records {
		if longForm {
			term.Printf("\nMessage %d:\n%s", record.SeqNum, record.Header)
			continue
		}
		summary, err := mailbox.NewSummary(record.UID, record.Size, record.Header)
		if err != nil {
			term.Debugf("message %d: %v", record.UID, err)
		}
		term.Printf("%8d  %-40.40s  %-40.40s  %-40.40s\n", summary.UID, summary.Subject, summary.From, summary.RawDate)
		term.Debugf("%8s  %s", "", humanize.IBytes(uint64(summary.Size)))
	}
	return nil
}
