package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creativeprojects/imapmirror/cfg"
	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/storage/remote"
	"github.com/creativeprojects/imapmirror/term"
	"github.com/spf13/cobra"
)

const historyFileName = ".history.db"

// resolveAccount merges the account of the configuration file with the command line.
// A first argument containing '@' is the user. The remaining arguments are returned.
func resolveAccount(cmd *cobra.Command, args []string) (cfg.Account, []string, error) {
	account, err := config.Account(global.account)
	if err != nil {
		return account, args, &usageError{message: err.Error()}
	}
	override := cfg.Account{
		User:                global.user,
		Host:                global.host,
		Port:                global.port,
		Password:            global.password,
		AuthType:            global.authType,
		SkipTLSVerification: global.skipTLSVerification,
		Timeout:             seconds(global.timeout),
		MailDir:             global.mailDir,
		Prefix:              global.prefix,
		Wait:                seconds(global.wait),
		Rate:                global.rate,
		Exclude:             global.excludes,
	}
	if cmd.Flags().Changed("tls") {
		override.TLS = &global.tls
	}
	if len(args) > 0 && strings.Contains(args[0], "@") {
		override.User = args[0]
		args = args[1:]
	}
	for _, filename := range global.includeFiles {
		patterns, err := lib.ReadPatterns(filename)
		if err != nil {
			return account, args, err
		}
		override.Include = append(override.Include, patterns...)
	}
	for _, filename := range global.excludeFiles {
		patterns, err := lib.ReadPatterns(filename)
		if err != nil {
			return account, args, err
		}
		override.Exclude = append(override.Exclude, patterns...)
	}
	if override.AuthType != "" && !validAuthType(override.AuthType) {
		return account, args, usageErrorf("invalid authentication type %q: use login, plain or md5", override.AuthType)
	}

	account, err = account.Merge(override).Resolve()
	if err != nil {
		return account, args, &usageError{message: err.Error()}
	}
	return account, args, nil
}

func validAuthType(authType string) bool {
	switch strings.ToLower(authType) {
	case remote.AuthLogin, remote.AuthPlain, remote.AuthMD5:
		return true
	}
	return false
}

func requireUser(account cfg.Account) error {
	if account.User == "" {
		return fmt.Errorf("%w: use -u user[@host[:port]]", lib.ErrMissingCredentials)
	}
	return nil
}

func remoteConfig(account cfg.Account) remote.Config {
	return remote.Config{
		Host:                account.Host,
		Port:                account.Port,
		TLS:                 account.UseTLS(),
		SkipTLSVerification: account.SkipTLSVerification,
		Username:            account.User,
		Password:            account.Password,
		AuthType:            strings.ToLower(account.AuthType),
		Timeout:             account.Timeout,
		DebugLogger:         protocolLogger(),
	}
}

// connect logs into the server of the account. The password comes from the
// account, then from the environment, and is finally asked on the terminal.
func connect(account cfg.Account) (*remote.Imap, error) {
	if err := requireUser(account); err != nil {
		return nil, err
	}
	if account.Password == "" {
		account.Password = cfg.PasswordFromEnv()
	}
	if account.Password == "" {
		password, err := cfg.AskPassword(os.Stderr, account.User)
		if err != nil {
			return nil, usageErrorf("password required: %v", err)
		}
		account.Password = password
	}
	config := remoteConfig(account)
	term.Debugf("connecting to %s as %s (tls=%v)", config.Address(), account.User, config.TLS)
	return remote.NewImap(config)
}

// accountTag identifies the account in the history database
func accountTag(account cfg.Account) string {
	return lib.AccountTag(remoteConfig(account).Address(), account.User)
}

func historyPath(account cfg.Account) string {
	if global.historyFile != "" {
		return global.historyFile
	}
	return filepath.Join(account.MailDir, historyFileName)
}

// engineLogger displays the progress of the components with -v
func engineLogger() lib.Logger {
	if !term.Enabled(term.LevelDebug) {
		return nil
	}
	return term.NewLogger(term.LevelDebug)
}

// protocolLogger displays the conversation with the server with -vv
func protocolLogger() lib.Logger {
	if !term.Enabled(term.LevelTrace) {
		return nil
	}
	return term.NewLogger(term.LevelTrace)
}
