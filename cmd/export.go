package cmd

import (
	"fmt"

	"github.com/creativeprojects/imapmirror/limitio"
	"github.com/creativeprojects/imapmirror/storage"
	"github.com/creativeprojects/imapmirror/storage/local"
	"github.com/creativeprojects/imapmirror/storage/mdir"
	"github.com/creativeprojects/imapmirror/term"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [mailboxes...]",
	Short: "Export the downloaded mailboxes into a maildir",
	RunE:  runExport,
}

var exportTo string

func init() {
	flag := exportCmd.Flags()
	flag.StringVarP(&global.mailDir, "maildir", "d", "", "local mail directory")
	flag.IntVar(&global.rate, "rate", 0, "limit of the local disk bandwidth in bytes per second")
	flag.StringVarP(&exportTo, "to", "o", "", "root of the maildir receiving the messages")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportTo == "" {
		return usageErrorf("missing destination maildir (--to)")
	}
	account, patterns, err := resolveAccount(cmd, args)
	if err != nil {
		return err
	}
	store, err := local.NewWithLogger(account.MailDir, engineLogger())
	if err != nil {
		return err
	}
	target, err := mdir.NewWithLogger(exportTo, engineLogger())
	if err != nil {
		return err
	}
	names, err := store.Mailboxes(cmd.Context())
	if err != nil {
		return fmt.Errorf("cannot read the local mail directory: %w", err)
	}
	names = storage.SelectDirectories(names, account.Filter(), patterns...)
	limiter := limitio.NewLimiter(account.Rate)

	failed := false
	for _, name := range names {
		source, err := store.Open(name)
		if err != nil {
			term.Error(err)
			failed = true
			continue
		}
		result, err := target.Export(cmd.Context(), source, limiter)
		if err != nil {
			term.Errorf("%s: %v", name, err)
			failed = true
			continue
		}
		term.Infof("%s: %d messages, %d exported, %d skipped", name, result.Messages, result.Exported, result.Skipped)
	}
	if failed {
		return errMailboxFailures
	}
	return nil
}
