package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/creativeprojects/imapmirror/cfg"
	"github.com/creativeprojects/imapmirror/term"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:               "imapmirror",
	Short:             "Mirror IMAP mailboxes into a local directory and back",
	Long:              "\nMirror IMAP mailboxes into a local directory and back",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	cobra.OnInitialize(initLog)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{message: err.Error()}
	})

	flag := rootCmd.PersistentFlags()
	flag.StringVarP(&global.configFile, "config", "c", "imapmirror.yaml", "configuration file")
	flag.StringVar(&global.envFile, "env", ".env", "file of environment variables")
	flag.StringVarP(&global.account, "account", "A", "", "account name from the configuration file")
	flag.CountVarP(&global.verbose, "verbose", "v", "display debugging information (twice to display the protocol)")
	flag.BoolVarP(&global.quiet, "quiet", "q", false, "only display warnings and errors")
	flag.BoolVarP(&global.longForm, "long", "l", false, "long form of the listings")
	flag.StringVarP(&global.user, "user", "u", "", "user name, as user or user@host[:port]")
	flag.StringVarP(&global.host, "host", "H", "", "server host name")
	flag.IntVarP(&global.port, "port", "p", 0, "server port (default 143, or 993 with TLS)")
	flag.BoolVarP(&global.tls, "tls", "s", false, "connect using TLS")
	flag.BoolVar(&global.skipTLSVerification, "skip-tls-verify", false, "do not verify the certificate of the server")
	flag.StringVarP(&global.authType, "auth", "a", "", "authentication: login, plain or md5 (default from the server capabilities)")
	flag.StringVar(&global.password, "pw", "", "password (default from "+cfg.PasswordEnv+" or asked on the terminal)")
	flag.Float64VarP(&global.timeout, "timeout", "t", 0, "timeout of the network operations in seconds")
	flag.StringArrayVarP(&global.excludes, "exclude", "x", nil, "exclude mailboxes matching the pattern")
	flag.StringArrayVarP(&global.includeFiles, "include-file", "I", nil, "include mailboxes matching the patterns of the file")
	flag.StringArrayVarP(&global.excludeFiles, "exclude-file", "X", nil, "exclude mailboxes matching the patterns of the file")
}

// addSyncFlags adds the flags of the commands transferring messages
func addSyncFlags(flag *pflag.FlagSet) {
	flag.StringVarP(&global.mailDir, "maildir", "d", "", "local mail directory")
	flag.BoolVarP(&global.dryRun, "dry-run", "n", false, "display what would be transferred without changing anything")
	flag.Float64VarP(&global.wait, "wait", "w", 0, "minimum delay between two messages in seconds")
	flag.IntVar(&global.rate, "rate", 0, "limit of the local disk bandwidth in bytes per second")
	flag.StringVar(&global.historyFile, "history", "", "history database (default "+historyFileName+" in the mail directory)")
}

func initLog() {
	switch {
	case global.verbose > 1:
		term.SetLevel(term.LevelTrace)
	case global.verbose == 1:
		term.SetLevel(term.LevelDebug)
	case global.quiet:
		term.SetLevel(term.LevelWarn)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	err := cfg.LoadEnv(global.envFile)
	if err != nil {
		return err
	}
	config, err = cfg.LoadFromFile(global.configFile)
	if err != nil {
		return fmt.Errorf("cannot open or read configuration file: %w", err)
	}
	return nil
}

// usageArgs reports invalid arguments as usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{message: err.Error()}
		}
		return nil
	}
}

// Execute runs the command line and returns the exit code.
// An interrupt cancels the transfers in progress.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		term.Error(err)
	}
	return exitCode(err)
}
