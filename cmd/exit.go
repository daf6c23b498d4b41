package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creativeprojects/imapmirror/lib"
)

// Exit codes
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitConnect  = 3
	exitLogin    = 4
	exitInternal = 5
)

var (
	errListFailed      = errors.New("unable to read mailbox list from server")
	errMailboxFailures = errors.New("some mailboxes were not fully synchronized")
	errProbeFailed     = errors.New("unable to find a connection")
)

// usageError is a mistake on the command line
type usageError struct {
	message string
}

func (e *usageError) Error() string {
	return e.message
}

func usageErrorf(format string, a ...any) error {
	return &usageError{message: fmt.Sprintf(format, a...)}
}

func exitCode(err error) int {
	var usage *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &usage),
		errors.Is(err, lib.ErrMissingMailDir),
		errors.Is(err, lib.ErrNotDirectory),
		errors.Is(err, lib.ErrMissingCredentials),
		strings.HasPrefix(err.Error(), "unknown command"):
		return exitUsage
	case errors.Is(err, lib.ErrCannotConnect):
		return exitConnect
	case errors.Is(err, lib.ErrCannotLogin):
		return exitLogin
	case errors.Is(err, errListFailed):
		return exitInternal
	default:
		return exitFailure
	}
}
