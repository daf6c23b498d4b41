package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/storage/history"
	"github.com/creativeprojects/imapmirror/term"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const dateFormat = "2006-01-02 15:04:05 MST"

var historyCmd = &cobra.Command{
	Use:   "history [user@host] [mailboxes...]",
	Short: "Display the history of the downloads and uploads of the account",
	RunE:  runHistory,
}

func init() {
	flag := historyCmd.Flags()
	flag.StringVarP(&global.mailDir, "maildir", "d", "", "local mail directory")
	flag.StringVar(&global.historyFile, "history", "", "history database (default "+historyFileName+" in the mail directory)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	account, patterns, err := resolveAccount(cmd, args)
	if err != nil {
		return err
	}
	if err = requireUser(account); err != nil {
		return err
	}
	if account.MailDir == "" && global.historyFile == "" {
		return lib.ErrMissingMailDir
	}
	filename := historyPath(account)
	if _, err = os.Stat(filename); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			term.Warnf("No history found in %s", filename)
			return nil
		}
		return err
	}
	store, err := history.OpenWithLogger(filename, accountTag(account), engineLogger())
	if err != nil {
		return fmt.Errorf("cannot open history: %w", err)
	}
	defer store.Close()

	names, err := store.Mailboxes()
	if err != nil {
		return fmt.Errorf("cannot read history: %w", err)
	}
	if len(patterns) > 0 {
		selected := make([]string, 0, len(names))
		for _, name := range names {
			if lib.Included(name, patterns) {
				selected = append(selected, name)
			}
		}
		names = selected
	}
	if len(names) == 0 {
		term.Warn("No history found for this account")
		return nil
	}

	for _, name := range names {
		entries, err := store.List(name)
		if err != nil {
			term.Error(err)
			continue
		}
		term.Infof("%s:", name)
		displayHistory(entries)
	}
	return nil
}

func displayHistory(entries []history.Entry) {
	table := pterm.DefaultTable.WithBoxed(true).WithHasHeader().WithData(pterm.TableData{
		{"Date", "Direction", "Messages", "Transferred", "Skipped", "Failed", "Error"},
	})
	for _, entry := range entries {
		direction := entry.Direction
		if entry.DryRun {
			direction += " (dry run)"
		}
		table.Data = append(table.Data, []string{
			entry.Date.Format(dateFormat),
			direction,
			strconv.Itoa(entry.Messages),
			strconv.Itoa(entry.Transferred),
			strconv.Itoa(entry.Skipped),
			strconv.Itoa(entry.Failed),
			entry.Error,
		})
	}
	_ = table.Render()
}
