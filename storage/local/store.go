// Package local keeps the downloaded messages on disk: one directory per mailbox
// containing the metadata ledger and one file per message named after its UID.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/creativeprojects/imapmirror/ledger"
	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/mailbox"
)

type Store struct {
	root string
	log  lib.Logger
}

// New opens the local mail directory. The directory must exist.
func New(root string) (*Store, error) {
	return NewWithLogger(root, nil)
}

func NewWithLogger(root string, logger lib.Logger) (*Store, error) {
	if root == "" {
		return nil, lib.ErrMissingMailDir
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot open mail directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, lib.ErrNotDirectory)
	}
	return &Store{
		root: root,
		log:  lib.OrNoLog(logger),
	}, nil
}

func (s *Store) Root() string {
	return s.root
}

// Path returns the directory of the mailbox. The mailbox name is used as a relative path.
func (s *Store) Path(name string) (string, error) {
	relative := filepath.Clean(filepath.FromSlash(name))
	if name == "" || relative == "." || filepath.IsAbs(relative) ||
		relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid mailbox name %q for a local directory", name)
	}
	return filepath.Join(s.root, relative), nil
}

// Create returns the mailbox, creating its directory when needed
func (s *Store) Create(name string) (*Mailbox, error) {
	dir, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	err = os.MkdirAll(dir, 0o700)
	if err != nil {
		return nil, fmt.Errorf("cannot create mailbox directory: %w", err)
	}
	return &Mailbox{Name: name, Dir: dir}, nil
}

// Open returns an existing mailbox
func (s *Store) Open(name string) (*Mailbox, error) {
	dir, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", lib.ErrMailboxNotFound, name)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, lib.ErrNotDirectory)
	}
	return &Mailbox{Name: name, Dir: dir}, nil
}

// Mailboxes returns the names of all the directories containing a ledger,
// relative to the root and using '/' as a separator, sorted by name with the
// well-known mailboxes first
func (s *Store) Mailboxes(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	err := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			s.log.Printf("cannot read %q: %v", path, err)
			if entry != nil && entry.IsDir() && path != s.root {
				return fs.SkipDir
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !entry.IsDir() || path == s.root || !ledger.Exists(path) {
			return nil
		}
		relative, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(relative))
		return nil
	})
	if err != nil {
		return nil, err
	}
	mailbox.SortNames(names)
	return names, nil
}
