package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/creativeprojects/imapmirror/cfg"
	"github.com/creativeprojects/imapmirror/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGlobals(t *testing.T, accounts map[string]cfg.Account) {
	t.Helper()
	global = GlobalFlags{}
	config = &cfg.Config{Accounts: accounts}
	t.Cleanup(func() {
		global = GlobalFlags{}
		config = nil
	})
}

func TestResolveAccountFromArgument(t *testing.T) {
	setupGlobals(t, nil)

	account, args, err := resolveAccount(listCmd, []string{"me@example.com:993", "INBOX"})
	require.NoError(t, err)
	assert.Equal(t, "me", account.User)
	assert.Equal(t, "example.com", account.Host)
	assert.Equal(t, 993, account.Port)
	assert.True(t, account.UseTLS())
	assert.Equal(t, []string{"INBOX"}, args)
}

func TestResolveAccountWithoutUser(t *testing.T) {
	setupGlobals(t, nil)

	account, args, err := resolveAccount(listCmd, []string{"INBOX"})
	require.NoError(t, err)
	assert.Equal(t, []string{"INBOX"}, args)
	assert.Equal(t, cfg.DefaultHost, account.Host)
	assert.Equal(t, cfg.DefaultPort, account.Port)
	assert.False(t, account.UseTLS())

	err = requireUser(account)
	assert.ErrorIs(t, err, lib.ErrMissingCredentials)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestResolveAccountFromConfiguration(t *testing.T) {
	useTLS := true
	setupGlobals(t, map[string]cfg.Account{
		"work": {
			User:    "me",
			Host:    "imap.example.com",
			TLS:     &useTLS,
			Include: []string{"INBOX"},
			MailDir: "/var/mail/work",
		},
	})
	global.account = "work"
	global.port = 1993
	global.excludes = []string{"Trash"}

	account, args, err := resolveAccount(listCmd, nil)
	require.NoError(t, err)
	assert.Empty(t, args)
	assert.Equal(t, "me", account.User)
	assert.Equal(t, "imap.example.com", account.Host)
	assert.Equal(t, 1993, account.Port)
	assert.True(t, account.UseTLS())
	assert.Equal(t, []string{"INBOX"}, account.Include)
	assert.Equal(t, []string{"Trash"}, account.Exclude)
	assert.Equal(t, filepath.Join("/var/mail/work", historyFileName), historyPath(account))
	assert.Len(t, accountTag(account), 64)
}

func TestResolveUnknownAccount(t *testing.T) {
	setupGlobals(t, map[string]cfg.Account{"work": {User: "me"}})
	global.account = "home"

	_, _, err := resolveAccount(listCmd, nil)
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestResolveAccountInvalidAuthType(t *testing.T) {
	setupGlobals(t, nil)
	global.authType = "kerberos"

	_, _, err := resolveAccount(listCmd, []string{"me@example.com"})
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestResolveAccountPatternFiles(t *testing.T) {
	setupGlobals(t, nil)
	dir := t.TempDir()
	includes := filepath.Join(dir, "include.txt")
	excludes := filepath.Join(dir, "exclude.txt")
	require.NoError(t, os.WriteFile(includes, []byte("INBOX\nWork/*\n"), 0o600))
	require.NoError(t, os.WriteFile(excludes, []byte("Junk\n"), 0o600))
	global.includeFiles = []string{includes}
	global.excludeFiles = []string{excludes}

	account, _, err := resolveAccount(listCmd, []string{"me@example.com"})
	require.NoError(t, err)
	assert.Contains(t, account.Include, "INBOX")
	assert.Contains(t, account.Include, "Work/*")
	assert.Contains(t, account.Exclude, "Junk")
}

func TestResolveAccountMissingPatternFile(t *testing.T) {
	setupGlobals(t, nil)
	global.includeFiles = []string{filepath.Join(t.TempDir(), "missing.txt")}

	_, _, err := resolveAccount(listCmd, nil)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
