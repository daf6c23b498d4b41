package storage

import (
	"time"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/limitio"
	"github.com/creativeprojects/imapmirror/mailbox"
	"github.com/creativeprojects/imapmirror/storage/history"
	"github.com/creativeprojects/imapmirror/storage/local"
	"golang.org/x/time/rate"
)

// Config of a synchronization
type Config struct {
	// Root of the local mail directory
	Root string
	// Prefix added to the remote mailbox names on upload
	Prefix string
	// Wait is the minimum delay between two message transfers
	Wait time.Duration
	// DeleteFirst deletes the remote mailbox before uploading
	DeleteFirst bool
	// Force uploading into a mailbox already containing messages
	Force bool
	// DryRun reports what would be transferred without changing anything
	DryRun bool
	// BytesPerSecond limits the speed of reading and writing message files (0 for no limit)
	BytesPerSecond int
}

// Recorder keeps the history of the passes
type Recorder interface {
	Record(entry history.Entry) error
}

type Option func(*Engine)

// WithLogger sends debugging information to the logger
func WithLogger(logger lib.Logger) Option {
	return func(e *Engine) {
		e.log = lib.OrNoLog(logger)
	}
}

// WithProgress displays the progress of each mailbox
func WithProgress(factory ProgressFactory) Option {
	return func(e *Engine) {
		e.newProgress = factory
	}
}

// WithRecorder records a history entry for each mailbox
func WithRecorder(recorder Recorder) Option {
	return func(e *Engine) {
		e.recorder = recorder
	}
}

// Engine synchronizes the mailboxes of one session with the local mail directory.
// It is not safe for concurrent use.
type Engine struct {
	session     Session
	config      Config
	store       *local.Store
	log         lib.Logger
	newProgress ProgressFactory
	recorder    Recorder
	pace        *rate.Limiter
	bandwidth   *rate.Limiter
	now         func() time.Time
}

// New creates an engine. The local mail directory must exist.
func New(session Session, config Config, options ...Option) (*Engine, error) {
	engine := &Engine{
		session:   session,
		config:    config,
		log:       &lib.NoLog{},
		bandwidth: limitio.NewLimiter(config.BytesPerSecond),
		now:       time.Now,
	}
	for _, option := range options {
		option(engine)
	}
	store, err := local.NewWithLogger(config.Root, engine.log)
	if err != nil {
		return nil, err
	}
	engine.store = store
	if config.Wait > 0 {
		engine.pace = rate.NewLimiter(rate.Every(config.Wait), 1)
	}
	return engine, nil
}

// Store returns the local mail directory
func (e *Engine) Store() *local.Store {
	return e.store
}

// RemoteName returns the name of the remote mailbox receiving the local mailbox
func (e *Engine) RemoteName(name string) string {
	return e.config.Prefix + mailbox.ChangeDelimiter(name, "/", e.session.Delimiter())
}

func (e *Engine) record(result Result) {
	if e.recorder == nil {
		return
	}
	entry := history.Entry{
		Date:        e.now(),
		Direction:   result.Direction,
		Mailbox:     result.Mailbox,
		Messages:    result.Messages,
		Transferred: result.Transferred,
		Skipped:     result.Skipped,
		Failed:      result.Failed,
		DryRun:      e.config.DryRun,
	}
	if result.Err != nil {
		entry.Error = result.Err.Error()
	}
	if err := e.recorder.Record(entry); err != nil {
		e.log.Printf("cannot record history of %q: %v", result.Mailbox, err)
	}
}
