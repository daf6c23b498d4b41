package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/storage/remote"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	testCases := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{errors.New("anything"), 1},
		{errMailboxFailures, 1},
		{errProbeFailed, 1},
		{usageErrorf("User (-u) required"), 2},
		{fmt.Errorf("cannot open: %w", lib.ErrMissingMailDir), 2},
		{lib.ErrMissingCredentials, 2},
		{errors.New(`unknown command "fetch" for "imapmirror"`), 2},
		{fmt.Errorf("%w localhost:143: refused", lib.ErrCannotConnect), 3},
		{fmt.Errorf("%w as me: %w", lib.ErrCannotLogin, &remote.ProtocolError{Command: "LOGIN", Status: "NO"}), 4},
		{fmt.Errorf("listing: %w", errListFailed), 5},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.code, exitCode(testCase.err), fmt.Sprintf("%v", testCase.err))
	}
}
