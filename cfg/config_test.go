package cfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	config, err := Load(strings.NewReader(`
accounts:
  work:
    user: me@example.com
    tls: true
    timeout: 30s
    wait: 500ms
    maildir: /backup/work
    exclude:
      - Spam
      - "Trash*"
  home:
    user: someone
    host: mail.example.org
    port: 1143
    auth: md5
    rate: 1048576
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "work"}, config.Names())

	work, err := config.Account("work")
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", work.User)
	assert.True(t, work.UseTLS())
	assert.Equal(t, 30*time.Second, work.Timeout)
	assert.Equal(t, 500*time.Millisecond, work.Wait)
	assert.Equal(t, []string{"Spam", "Trash*"}, work.Filter().Exclude)

	home, err := config.Account("home")
	require.NoError(t, err)
	assert.Equal(t, 1143, home.Port)
	assert.Equal(t, "md5", home.AuthType)
	assert.Equal(t, 1048576, home.Rate)
	assert.Nil(t, home.TLS)

	_, err = config.Account("other")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	// more than one account
	account, err := config.Account("")
	require.NoError(t, err)
	assert.Empty(t, account.User)
}

func TestLoadInvalidConfig(t *testing.T) {
	_, err := Load(strings.NewReader("accounts:\n  work:\n    unknown: field\n"))
	assert.Error(t, err)
}

func TestLoadEmptyConfig(t *testing.T) {
	config, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, config.Accounts)
}

func TestLoadMissingFile(t *testing.T) {
	config, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, config.Accounts)
}

func TestSingleAccountIsDefault(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("accounts:\n  only:\n    user: me\n"), 0o600))

	config, err := LoadFromFile(file)
	require.NoError(t, err)
	account, err := config.Account("")
	require.NoError(t, err)
	assert.Equal(t, "me", account.User)
}

func TestParseEmail(t *testing.T) {
	testCases := []struct {
		address string
		user    string
		host    string
		port    int
	}{
		{"user", "user", "", 0},
		{"user@example.com", "user", "example.com", 0},
		{"user@example.com:993", "user", "example.com", 993},
		{"first@last@example.com", "first@last", "example.com", 0},
		{"", "", "", 0},
	}
	for _, testCase := range testCases {
		t.Run(testCase.address, func(t *testing.T) {
			user, host, port, err := ParseEmail(testCase.address)
			require.NoError(t, err)
			assert.Equal(t, testCase.user, user)
			assert.Equal(t, testCase.host, host)
			assert.Equal(t, testCase.port, port)
		})
	}

	for _, address := range []string{"user@host:abc", "user@host:0", "user@host:70000"} {
		_, _, _, err := ParseEmail(address)
		assert.Error(t, err, address)
	}
}

func TestResolve(t *testing.T) {
	yes, no := true, false
	testCases := []struct {
		name    string
		account Account
		host    string
		port    int
		tls     bool
	}{
		{"defaults", Account{User: "me"}, "localhost", 143, false},
		{"from email", Account{User: "me@example.com"}, "example.com", 143, false},
		{"port 993 is tls", Account{User: "me@example.com:993"}, "example.com", 993, true},
		{"tls default port", Account{User: "me@example.com", TLS: &yes}, "example.com", 993, true},
		{"no tls on 993", Account{User: "me@example.com:993", TLS: &no}, "example.com", 993, false},
		{"explicit host wins", Account{User: "me@example.com:1143", Host: "imap.example.com"}, "imap.example.com", 1143, false},
		{"explicit port wins", Account{User: "me@example.com:1143", Port: 993}, "example.com", 993, true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			account, err := testCase.account.Resolve()
			require.NoError(t, err)
			assert.Equal(t, "me", account.User)
			assert.Equal(t, testCase.host, account.Host)
			assert.Equal(t, testCase.port, account.Port)
			assert.Equal(t, testCase.tls, account.UseTLS())
		})
	}
}

func TestMerge(t *testing.T) {
	yes := true
	base := Account{User: "me@example.com", Timeout: time.Second, Exclude: []string{"Spam"}, MailDir: "mail"}
	merged := base.Merge(Account{Host: "imap.example.com", TLS: &yes, Exclude: []string{"Trash"}})
	assert.Equal(t, "me@example.com", merged.User)
	assert.Equal(t, "imap.example.com", merged.Host)
	assert.True(t, merged.UseTLS())
	assert.Equal(t, time.Second, merged.Timeout)
	assert.Equal(t, "mail", merged.MailDir)
	assert.Equal(t, []string{"Spam", "Trash"}, merged.Exclude)
	// the original is untouched
	assert.Equal(t, []string{"Spam"}, base.Exclude)
}

func TestLoadEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte(PasswordEnv+"=secret\n"), 0o600))
	t.Setenv(PasswordEnv, "")
	require.NoError(t, os.Unsetenv(PasswordEnv))

	err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"), file)
	require.NoError(t, err)
	assert.Equal(t, "secret", PasswordFromEnv())
}
