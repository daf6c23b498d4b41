package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/storage/history"
	"github.com/creativeprojects/imapmirror/storage/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressRecorder struct {
	name    string
	updates []int
	done    int
}

func (p *progressRecorder) Update(done, total int) {
	p.updates = append(p.updates, done)
}

func (p *progressRecorder) Done() {
	p.done++
}

type progressFactory struct {
	progress []*progressRecorder
}

func (f *progressFactory) create(name string, total int) Progress {
	progress := &progressRecorder{name: name}
	f.progress = append(f.progress, progress)
	return progress
}

func newTestEngine(t *testing.T, session Session, config Config, options ...Option) *Engine {
	t.Helper()
	if config.Root == "" {
		config.Root = t.TempDir()
	}
	options = append([]Option{WithLogger(lib.NewTestLogger(t, "engine"))}, options...)
	engine, err := New(session, config, options...)
	require.NoError(t, err)
	return engine
}

func TestNewEngineWithoutDirectory(t *testing.T) {
	_, err := New(mem.New(), Config{})
	assert.ErrorIs(t, err, lib.ErrMissingMailDir)

	_, err = New(mem.New(), Config{Root: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestRemoteName(t *testing.T) {
	engine := newTestEngine(t, mem.New(), Config{})
	assert.Equal(t, "INBOX", engine.RemoteName("INBOX"))
	assert.Equal(t, "Archive.2020", engine.RemoteName("Archive/2020"))

	engine = newTestEngine(t, mem.New(), Config{Prefix: "Backup."})
	assert.Equal(t, "Backup.Archive.2020", engine.RemoteName("Archive/2020"))
}

func TestThrottledProgress(t *testing.T) {
	factory := &progressFactory{}
	engine := newTestEngine(t, mem.New(), Config{}, WithProgress(factory.create))
	now := time.Date(2022, 6, 1, 10, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	progress := engine.startProgress("INBOX", 1000)
	for done := 1; done <= 1000; done++ {
		progress.Update(done)
	}
	progress.Done()

	require.Len(t, factory.progress, 1)
	recorder := factory.progress[0]
	assert.Equal(t, "INBOX", recorder.name)
	assert.Len(t, recorder.updates, 100)
	assert.Equal(t, 1000, recorder.updates[99])
	assert.Equal(t, 1, recorder.done)

	// same percentage but after the interval
	progress = engine.startProgress("Sent", 1000)
	progress.Update(1)
	now = now.Add(2 * progressInterval)
	progress.Update(2)
	require.Len(t, factory.progress, 2)
	assert.Equal(t, []int{2}, factory.progress[1].updates)
}

func TestNoProgressOnEmptyMailbox(t *testing.T) {
	factory := &progressFactory{}
	engine := newTestEngine(t, mem.New(), Config{}, WithProgress(factory.create))
	progress := engine.startProgress("INBOX", 0)
	progress.Update(0)
	progress.Done()
	assert.Empty(t, factory.progress)
}

func TestRecordHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), "account")
	require.NoError(t, err)
	defer store.Close()

	session := mem.New()
	session.GenerateFakeEmails("INBOX", 3, 10, 20)
	engine := newTestEngine(t, session, Config{}, WithRecorder(store))

	mailboxes, err := ListMailboxes(session, nil)
	require.NoError(t, err)
	results := engine.Download(ctx(t), mailboxes)
	require.Len(t, results, 1)

	last, err := store.Last("INBOX")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, history.Download, last.Direction)
	assert.Equal(t, 3, last.Messages)
	assert.Equal(t, 3, last.Transferred)
	assert.Empty(t, last.Error)
	assert.False(t, last.DryRun)
}

func TestResult(t *testing.T) {
	ok := Result{Mailbox: "INBOX", Messages: 3, Transferred: 2, Skipped: 1}
	assert.True(t, ok.OK())
	assert.Equal(t, "INBOX: 3 messages, 2 transferred, 1 skipped", ok.String())

	partial := Result{Mailbox: "Sent", Messages: 3, Transferred: 2, Failed: 1}
	assert.False(t, partial.OK())
	assert.Equal(t, "Sent: 3 messages, 2 transferred, 0 skipped, 1 failed", partial.String())

	failed := Result{Mailbox: "Bin", Err: lib.ErrMailboxNotFound}
	assert.Equal(t, "Bin: mailbox not found", failed.String())

	assert.False(t, Failed([]Result{ok}))
	assert.True(t, Failed([]Result{ok, partial}))
	assert.True(t, Failed([]Result{failed}))
}
