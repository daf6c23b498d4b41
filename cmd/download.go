package cmd

import (
	"fmt"

	"github.com/creativeprojects/imapmirror/cfg"
	"github.com/creativeprojects/imapmirror/storage"
	"github.com/creativeprojects/imapmirror/storage/history"
	"github.com/creativeprojects/imapmirror/storage/local"
	"github.com/creativeprojects/imapmirror/term"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download [user@host] [mailboxes...]",
	Short: "Download the messages of the mailboxes into the local mail directory",
	Long: "\nDownload the messages of the mailboxes into the local mail directory." +
		"\nMessages already downloaded are skipped, so a download can be run again to fetch the new messages.",
	RunE: runDownload,
}

func init() {
	addSyncFlags(downloadCmd.Flags())
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	account, patterns, err := resolveAccount(cmd, args)
	if err != nil {
		return err
	}
	// check the local directory before asking for a password
	if _, err = local.New(account.MailDir); err != nil {
		return err
	}
	session, err := connect(account)
	if err != nil {
		return err
	}
	defer session.Close()

	engine, closeHistory, err := newEngine(session, account)
	if err != nil {
		return err
	}
	defer closeHistory()

	mailboxes, err := storage.ListMailboxes(session, engineLogger())
	if err != nil {
		return fmt.Errorf("%w: %w", errListFailed, err)
	}
	mailboxes = storage.SelectMailboxes(mailboxes, account.Filter(), patterns...)
	if len(mailboxes) == 0 {
		term.Warn("No mailbox selected")
		return nil
	}
	return displayResults(engine.Download(cmd.Context(), mailboxes))
}

// newEngine creates the engine recording its passes into the history database
func newEngine(session storage.Session, account cfg.Account) (*storage.Engine, func(), error) {
	config := storage.Config{
		Root:           account.MailDir,
		Prefix:         account.Prefix,
		Wait:           account.Wait,
		DeleteFirst:    global.deleteFirst,
		Force:          global.force,
		DryRun:         global.dryRun,
		BytesPerSecond: account.Rate,
	}
	options := []storage.Option{storage.WithLogger(engineLogger())}
	if showProgress() {
		options = append(options, storage.WithProgress(newProgressBar))
	}
	closeHistory := func() {}
	store, err := history.OpenWithLogger(historyPath(account), accountTag(account), engineLogger())
	if err != nil {
		term.Warnf("history not available: %v", err)
	} else {
		options = append(options, storage.WithRecorder(store))
		closeHistory = func() {
			if err := store.Close(); err != nil {
				term.Warnf("cannot close history: %v", err)
			}
		}
	}
	engine, err := storage.New(session, config, options...)
	if err != nil {
		closeHistory()
		return nil, nil, err
	}
	return engine, closeHistory, nil
}

func displayResults(results []storage.Result) error {
	for _, result := range results {
		if result.OK() {
			term.Info(result.String())
			continue
		}
		term.Error(result.String())
	}
	if storage.Failed(results) {
		return errMailboxFailures
	}
	return nil
}
