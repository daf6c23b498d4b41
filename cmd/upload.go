package cmd

import (
	"fmt"

	"github.com/creativeprojects/imapmirror/storage"
	"github.com/creativeprojects/imapmirror/storage/local"
	"github.com/creativeprojects/imapmirror/term"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [user@host] [mailboxes...]",
	Short: "Upload the local mailboxes to the server",
	Long: "\nUpload the local mailboxes to the server." +
		"\nA remote mailbox already containing messages is left untouched unless --force is used;" +
		" messages already on the server are then skipped.",
	RunE: runUpload,
}

func init() {
	flag := uploadCmd.Flags()
	addSyncFlags(flag)
	flag.BoolVarP(&global.deleteFirst, "delete", "D", false, "delete the remote mailbox before uploading")
	flag.BoolVarP(&global.force, "force", "f", false, "upload into mailboxes already containing messages")
	flag.StringVarP(&global.prefix, "prefix", "P", "", "prefix added to the name of the remote mailboxes")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	account, patterns, err := resolveAccount(cmd, args)
	if err != nil {
		return err
	}
	store, err := local.NewWithLogger(account.MailDir, engineLogger())
	if err != nil {
		return err
	}
	names, err := store.Mailboxes(cmd.Context())
	if err != nil {
		return fmt.Errorf("cannot read the local mail directory: %w", err)
	}
	names = storage.SelectDirectories(names, account.Filter(), patterns...)
	if len(names) == 0 {
		term.Warn("No local mailbox selected")
		return nil
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

	return displayResults(engine.Upload(cmd.Context(), names))
}
