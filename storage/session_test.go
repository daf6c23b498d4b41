package storage

import (
	"context"
	"testing"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/mailbox"
	"github.com/creativeprojects/imapmirror/storage/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctx(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func names(mailboxes []mailbox.Info) []string {
	names := make([]string, len(mailboxes))
	for i, info := range mailboxes {
		names[i] = info.Name
	}
	return names
}

func TestListMailboxes(t *testing.T) {
	session := mem.New()
	session.AddMailbox("Zebra")
	session.AddMailbox("Rubbish", `\Trash`)
	session.AddMailbox("Sent Items")
	session.AddMailbox("Archive.2020", `\HasNoChildren`)

	mailboxes, err := ListMailboxes(session, lib.NewTestLogger(t, "list"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Rubbish", "INBOX", "Archive.2020", "Sent Items", "Zebra"}, names(mailboxes))
	assert.Equal(t, ".", mailboxes[0].Delimiter)
	assert.True(t, mailboxes[0].Flags.Has(mailbox.FlagTrash))
}

func TestSelectMailboxes(t *testing.T) {
	mailboxes := []mailbox.Info{
		mailbox.NewInfo("INBOX", "."),
		mailbox.NewInfo("Archive", "."),
		mailbox.NewInfo("Archive.2020", "."),
		mailbox.NewInfo("Spam", "."),
	}

	testCases := []struct {
		filter   lib.Filter
		patterns []string
		expected []string
	}{
		{lib.Filter{}, nil, []string{"INBOX", "Archive", "Archive.2020", "Spam"}},
		{lib.Filter{Exclude: []string{"Spam"}}, nil, []string{"INBOX", "Archive", "Archive.2020"}},
		{lib.Filter{}, []string{"Archive*"}, []string{"Archive", "Archive.2020"}},
		{lib.Filter{Include: []string{"Spam"}}, []string{"INBOX", "Spam"}, []string{"Spam", "INBOX"}},
		{lib.Filter{Exclude: []string{"*.2020"}}, []string{"Arch*"}, []string{"Archive"}},
		{lib.Filter{}, []string{"Missing"}, []string{}},
	}

	for _, testCase := range testCases {
		selected := SelectMailboxes(mailboxes, testCase.filter, testCase.patterns...)
		assert.Equal(t, testCase.expected, names(selected))
	}
}

func TestSelectDirectories(t *testing.T) {
	dirs := []string{"INBOX", "Archive", "Archive/2020", "Work/Sent"}

	testCases := []struct {
		filter   lib.Filter
		patterns []string
		expected []string
	}{
		{lib.Filter{}, nil, dirs},
		{lib.Filter{Include: []string{"Sent"}}, nil, []string{"Work/Sent"}},
		{lib.Filter{Exclude: []string{"Sent"}}, nil, dirs},
		{lib.Filter{Exclude: []string{"Work/*"}}, nil, []string{"INBOX", "Archive", "Archive/2020"}},
		{lib.Filter{}, []string{"2020", "INBOX"}, []string{"INBOX", "Archive/2020"}},
	}

	for _, testCase := range testCases {
		selected := SelectDirectories(dirs, testCase.filter, testCase.patterns...)
		assert.Equal(t, testCase.expected, selected)
	}
}
