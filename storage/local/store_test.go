package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/creativeprojects/imapmirror/ledger"
	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/limitio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, lib.ErrMissingMailDir)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte{}, 0o600))
	_, err = New(file)
	assert.ErrorIs(t, err, lib.ErrNotDirectory)

	_, err = New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	store, err := New(t.TempDir())
	require.NoError(t, err)
	assert.NotEmpty(t, store.Root())
}

func TestPath(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	require.NoError(t, err)

	dir, err := store.Path("Archive/2020")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Archive", "2020"), dir)

	dir, err = store.Path("INBOX.Sent")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "INBOX.Sent"), dir)

	for _, name := range []string{"", ".", "..", "../outside", "a/../../outside"} {
		_, err = store.Path(name)
		assert.Error(t, err, name)
	}
}

func TestBlobs(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	mbox, err := store.Create("INBOX")
	require.NoError(t, err)

	_, found := mbox.BlobSize(12)
	assert.False(t, found)

	body := []byte("Subject: test\r\n\r\nHello")
	err = mbox.WriteBlob(context.Background(), 12, body, nil)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(mbox.Dir, "u12"))
	assert.True(t, mbox.HasBlob(12, int64(len(body))))
	assert.False(t, mbox.HasBlob(12, 1))

	read, err := mbox.ReadBlob(context.Background(), 12, limitio.NewLimiter(1024*1024))
	require.NoError(t, err)
	assert.Equal(t, body, read)

	_, err = mbox.ReadBlob(context.Background(), 13, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// no temporary file left behind
	files, err := os.ReadDir(mbox.Dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestWriteBlobCancelled(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	mbox, err := store.Create("INBOX")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = mbox.WriteBlob(ctx, 1, make([]byte, 4096), limitio.NewLimiter(1024))
	assert.ErrorIs(t, err, context.Canceled)

	_, found := mbox.BlobSize(1)
	assert.False(t, found)
	files, err := os.ReadDir(mbox.Dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestOpenMailbox(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("Work")
	assert.ErrorIs(t, err, lib.ErrMailboxNotFound)

	created, err := store.Create("Work")
	require.NoError(t, err)
	opened, err := store.Open("Work")
	require.NoError(t, err)
	assert.Equal(t, created, opened)
	assert.Equal(t, filepath.Join(created.Dir, ledger.Filename), opened.Ledger())
}

func TestMailboxes(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"projects", "INBOX", "Archive", "Archive/2020", "Sent"} {
		mbox, err := store.Create(name)
		require.NoError(t, err)
		writer, err := ledger.Open(mbox.Dir)
		require.NoError(t, err)
		require.NoError(t, writer.Close())
	}
	// directory without ledger
	_, err = store.Create("Empty")
	require.NoError(t, err)

	names, err := store.Mailboxes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Archive", "INBOX", "Sent", "Archive/2020", "projects"}, names)
}
