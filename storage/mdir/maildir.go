// Package mdir exports the downloaded mailboxes into Maildir++ folders
package mdir

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/creativeprojects/imapmirror/ledger"
	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/mailbox"
	"github.com/creativeprojects/imapmirror/storage/local"
	"github.com/emersion/go-maildir"
	"golang.org/x/time/rate"
)

const Delimiter = "."

// Result of the export of one mailbox
type Result struct {
	Folder   string
	Messages int
	Exported int
	Skipped  int
}

type Maildir struct {
	root string
	log  lib.Logger
}

func New(root string) (*Maildir, error) {
	return NewWithLogger(root, nil)
}

func NewWithLogger(root string, logger lib.Logger) (*Maildir, error) {
	if runtime.GOOS == "windows" {
		return nil, errors.New("maildir is not supported on Windows")
	}
	if root == "" {
		return nil, lib.ErrMissingMailDir
	}
	err := os.MkdirAll(root, 0700)
	if err != nil {
		return nil, err
	}

	return &Maildir{
		root: root,
		log:  lib.OrNoLog(logger),
	}, nil
}

func (m *Maildir) Root() string {
	return m.root
}

// Folder returns the Maildir++ folder receiving the mailbox: the INBOX is the
// root of the maildir, the other mailboxes are sub-folders using a dot as a delimiter
func (m *Maildir) Folder(name string) maildir.Dir {
	if strings.EqualFold(name, "INBOX") {
		return maildir.Dir(m.root)
	}
	return maildir.Dir(filepath.Join(m.root, Delimiter+folderName(name)))
}

// folderName converts the hierarchy of a local mailbox into a Maildir++ folder
// name. Dots already in the name are escaped.
func folderName(name string) string {
	return mailbox.ChangeDelimiter(strings.ReplaceAll(name, Delimiter, `\`+Delimiter), "/", Delimiter)
}

// Export copies the messages of the local mailbox not already in the folder.
// Messages are compared using their Message-Id header, or their content when
// they have none.
func (m *Maildir) Export(ctx context.Context, source *local.Mailbox, limiter *rate.Limiter) (Result, error) {
	dir := m.Folder(source.Name)
	result := Result{Folder: string(dir)}

	entries, err := ledger.Read(source.Ledger(), m.log)
	if err != nil {
		return result, err
	}
	result.Messages = len(entries)

	if err := m.init(dir); err != nil {
		return result, err
	}
	existing, err := m.messageIDs(ctx, dir)
	if err != nil {
		return result, err
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		id := entry.MessageID
		if existing[id] {
			result.Skipped++
			continue
		}
		body, err := source.ReadBlob(ctx, entry.UID, limiter)
		if err != nil {
			return result, err
		}
		if id == mailbox.SyntheticMessageID(entry.UID) {
			id = contentID(body)
			if existing[id] {
				result.Skipped++
				continue
			}
		}
		key, err := m.create(dir, entry.Flags, body)
		if err != nil {
			return result, fmt.Errorf("cannot export message %d: %w", entry.UID, err)
		}
		m.log.Printf("Message saved: folder=%q key=%q size=%d flags=%v", dir, key, len(body), entry.Flags)
		existing[id] = true
		result.Exported++
	}
	return result, nil
}

func (m *Maildir) init(dir maildir.Dir) error {
	_, err := os.Stat(filepath.Join(string(dir), "cur"))
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	m.log.Printf("creating maildir folder %q", dir)
	return dir.Init()
}

func (m *Maildir) create(dir maildir.Dir, flags []string, body []byte) (string, error) {
	key, writer, err := dir.Create(toFlags(flags))
	if err != nil {
		return "", err
	}
	_, err = writer.Write(body)
	if err != nil {
		writer.Close()
		return "", err
	}
	return key, writer.Close()
}

// messageIDs returns the identifiers of the messages of the folder: the Message-Id
// header, or the content identifier of a message without one
func (m *Maildir) messageIDs(ctx context.Context, dir maildir.Dir) (map[string]bool, error) {
	keys, err := dir.Keys()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(keys))
	for _, key := range keys {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		id, err := readMessageID(dir, key)
		if err != nil {
			m.log.Printf("cannot read message %q: %v", key, err)
			continue
		}
		ids[id] = true
	}
	return ids, nil
}

func readMessageID(dir maildir.Dir, key string) (string, error) {
	file, err := dir.Open(key)
	if err != nil {
		return "", fmt.Errorf("cannot open key %q: %w", key, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	header, err := mailbox.ReadHeader(content)
	if err != nil {
		return "", err
	}
	if id := strings.TrimSpace(header.Get("Message-Id")); id != "" {
		return id, nil
	}
	return contentID(content), nil
}

// contentID identifies a message without Message-Id by a hash of its content
func contentID(content []byte) string {
	sum := sha256.Sum256(content)
	return "<sha256-" + hex.EncodeToString(sum[:]) + ">"
}
