package lib

import "errors"

var (
	ErrMailboxNotFound    = errors.New("mailbox not found")
	ErrMailboxExists      = errors.New("mailbox already exists")
	ErrNotSelected        = errors.New("mailbox not selected")
	ErrMalformedResponse  = errors.New("malformed server response")
	ErrMailboxNotEmpty    = errors.New("mailbox is not empty")
	ErrMissingMailDir     = errors.New("local mail directory not specified")
	ErrNotDirectory       = errors.New("not a directory")
	ErrMissingCredentials = errors.New("missing user name")
	ErrCannotConnect      = errors.New("cannot connect to server")
	ErrCannotLogin        = errors.New("cannot log in")
)
