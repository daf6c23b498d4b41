package cmd

import (
	"fmt"

	"github.com/creativeprojects/imapmirror/mailbox"
	"github.com/creativeprojects/imapmirror/storage"
	"github.com/creativeprojects/imapmirror/term"
	"github.com/spf13/cobra"
)

var listBoxesCmd = &cobra.Command{
	Use:   "listboxes [user@host] [patterns...]",
	Short: "Display the mailboxes of the server",
	RunE:  runListBoxes,
}

func init() {
	rootCmd.AddCommand(listBoxesCmd)
}

func runListBoxes(cmd *cobra.Command, args []string) error {
	account, patterns, err := resolveAccount(cmd, args)
	if err != nil {
		return err
	}
	session, err := connect(account)
	if err != nil {
		return err
	}
	defer session.Close()

	mailboxes, err := storage.ListMailboxes(session, engineLogger())
	if err != nil {
		return fmt.Errorf("%w: %w", errListFailed, err)
	}
	mailboxes = storage.SelectMailboxes(mailboxes, account.Filter(), patterns...)

	if global.longForm {
		for _, line := range mailbox.Legend {
			term.Println(line)
		}
		term.Println()
	}
	for _, info := range mailboxes {
		if global.longForm {
			term.Printf("%s %s\n", info.Letters(), info.Name)
			continue
		}
		term.Println(info.Name)
	}
	return nil
}
