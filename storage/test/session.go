package test

import (
	"strconv"
	"testing"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/mailbox"
	"github.com/creativeprojects/imapmirror/parser"
	"github.com/creativeprojects/imapmirror/storage"
	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	SampleMessage = "From: contact@example.org\r\n" +
		"To: contact@example.org\r\n" +
		"Subject: A little message, just for you\r\n" +
		"Date: Wed, 11 May 2016 14:31:59 +0000\r\n" +
		"Message-ID: <0000000@localhost/>\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Hi there :)"
	SampleMessageID    = "<0000000@localhost/>"
	sampleMessageFlags = []string{imap.SeenFlag}
)

// RunTestsOnSession is the unit tests runner called by the concrete implementations of storage.Session.
// The session must contain an INBOX with at least one message.
func RunTestsOnSession(t *testing.T, session storage.Session) {
	require.NotNil(t, session)

	t.Run("ListMailboxes", func(t *testing.T) {
		list, err := storage.ListMailboxes(session, lib.NewTestLogger(t, "list"))
		require.NoError(t, err)

		// check there's at least one mailbox
		require.Greater(t, len(list), 0)
		assert.True(t, mailboxExists("INBOX", list))
	})

	t.Run("Delimiter", func(t *testing.T) {
		assert.NotEmpty(t, session.Delimiter())
	})

	t.Run("CreateExistingMailbox", func(t *testing.T) {
		err := session.Create("INBOX")
		assert.Error(t, err)
	})

	t.Run("CreateDeleteMailbox", func(t *testing.T) {
		name := "Path" + session.Delimiter() + "Mailbox"
		createMailbox(t, session, name)
		deleteMailbox(t, session, name)
		// also deletes the "Path" one if exists (it should on IMAP)
		_ = session.Delete("Path")
	})

	t.Run("SelectMailboxDoesNotExist", func(t *testing.T) {
		_, err := session.Select("No mailbox at that name", true)
		assert.Error(t, err)
	})

	t.Run("SelectInbox", func(t *testing.T) {
		count, err := session.Select("INBOX", true)
		require.NoError(t, err)
		assert.Greater(t, count, uint32(0))

		entries, err := session.Fetch("1", "(UID RFC822.SIZE)")
		require.NoError(t, err)
		records, err := parser.DecodeFetch(entries)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, uint32(1), records[0].SeqNum)
		assert.NotZero(t, records[0].UID)
		assert.NotZero(t, records[0].Size)
	})

	t.Run("CreateSimpleMailbox", func(t *testing.T) {
		createMailbox(t, session, "Work")
	})

	t.Run("AppendMessage", func(t *testing.T) {
		err := session.Append("Work", sampleMessageFlags, []byte(SampleMessage))
		require.NoError(t, err)

		// Verify the mailbox shows 1 message
		count, err := session.Select("Work", false)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), count)
	})

	t.Run("FetchOneMessage", func(t *testing.T) {
		_, err := session.Select("Work", true)
		require.NoError(t, err)

		entries, err := session.Fetch("1", "(FLAGS RFC822)")
		require.NoError(t, err)
		records, err := parser.DecodeFetch(entries)
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, SampleMessage, string(records[0].Body))
		assert.ElementsMatch(t, sampleMessageFlags, lib.StripRecentFlag(records[0].Flags))
		assert.Equal(t, SampleMessageID, mailbox.MessageID(records[0].Body, 1))
	})

	t.Run("AppendTwoMoreMessages", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			err := session.Append("Work", nil, []byte(SampleMessage))
			require.NoError(t, err)
		}

		// Verify the mailbox shows 3 messages
		count, err := session.Select("Work", true)
		require.NoError(t, err)
		assert.Equal(t, uint32(3), count)
	})

	t.Run("FetchThreeHeaders", func(t *testing.T) {
		_, err := session.Select("Work", true)
		require.NoError(t, err)

		entries, err := session.Fetch("1:*", "(UID RFC822.HEADER)")
		require.NoError(t, err)
		records, err := parser.DecodeFetch(entries)
		require.NoError(t, err)
		require.Len(t, records, 3)

		uids := make(map[uint32]bool)
		for i, record := range records {
			assert.Equal(t, uint32(i+1), record.SeqNum)
			assert.True(t, record.Has(parser.FieldHeader))
			assert.Equal(t, SampleMessageID, mailbox.MessageID(record.Header, record.UID))
			uids[record.UID] = true
		}
		assert.Len(t, uids, 3)
	})

	t.Run("FetchSizes", func(t *testing.T) {
		_, err := session.Select("Work", true)
		require.NoError(t, err)

		for seqNum := 1; seqNum <= 3; seqNum++ {
			entries, err := session.Fetch(strconv.Itoa(seqNum), "(UID RFC822.SIZE)")
			require.NoError(t, err)
			records, err := parser.DecodeFetch(entries)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, uint32(len(SampleMessage)), records[0].Size)
		}
	})

	t.Run("DeleteSimpleMailbox", func(t *testing.T) {
		deleteMailbox(t, session, "Work")
	})
}

// PrepareSession adds a message to the INBOX if it's empty
func PrepareSession(session storage.Session) error {
	count, err := session.Select("INBOX", true)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return session.Append("INBOX", []string{imap.SeenFlag}, []byte(SampleMessage))
}

func createMailbox(t *testing.T, session storage.Session, name string) {
	t.Helper()

	err := session.Create(name)
	require.NoError(t, err)

	list, err := storage.ListMailboxes(session, nil)
	require.NoError(t, err)
	assert.True(t, mailboxExists(name, list))
}

func deleteMailbox(t *testing.T, session storage.Session, name string) {
	t.Helper()

	err := session.Delete(name)
	require.NoError(t, err)

	list, err := storage.ListMailboxes(session, nil)
	require.NoError(t, err)
	assert.False(t, mailboxExists(name, list))
}

func mailboxExists(name string, in []mailbox.Info) bool {
	for _, mailbox := range in {
		if mailbox.Name == name {
			return true
		}
	}
	return false
}
