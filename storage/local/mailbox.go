package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/creativeprojects/imapmirror/ledger"
	"github.com/creativeprojects/imapmirror/limitio"
	"golang.org/x/time/rate"
)

const blobPrefix = "u"

// Mailbox is the directory of one mailbox
type Mailbox struct {
	Name string
	Dir  string
}

// Ledger returns the path of the metadata ledger
func (m *Mailbox) Ledger() string {
	return ledger.Path(m.Dir)
}

// BlobPath returns the file name of the message
func (m *Mailbox) BlobPath(uid uint32) string {
	return filepath.Join(m.Dir, blobPrefix+strconv.FormatUint(uint64(uid), 10))
}

// BlobSize returns the size of the stored message, and false if it doesn't exist
func (m *Mailbox) BlobSize(uid uint32) (int64, bool) {
	info, err := os.Stat(m.BlobPath(uid))
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

// HasBlob returns true when the message is stored with the expected size
func (m *Mailbox) HasBlob(uid uint32, size int64) bool {
	stored, found := m.BlobSize(uid)
	return found && stored == size
}

// WriteBlob stores the message. The content is written to a temporary file
// renamed into place once complete, so a message file is never partial.
// A nil limiter writes at full speed.
func (m *Mailbox) WriteBlob(ctx context.Context, uid uint32, body []byte, limiter *rate.Limiter) error {
	temp, err := os.CreateTemp(m.Dir, ".tmp-"+blobPrefix+"*")
	if err != nil {
		return fmt.Errorf("cannot create temporary file: %w", err)
	}
	tempName := temp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tempName)
	}()

	writer := limitio.NewWriterWithContext(ctx, temp)
	writer.SetLimiter(limiter)
	_, err = writer.Write(body)
	if err != nil {
		temp.Close()
		return fmt.Errorf("cannot write message %d: %w", uid, err)
	}
	err = temp.Sync()
	if err != nil {
		temp.Close()
		return fmt.Errorf("cannot write message %d: %w", uid, err)
	}
	err = temp.Close()
	if err != nil {
		return fmt.Errorf("cannot write message %d: %w", uid, err)
	}
	err = os.Rename(tempName, m.BlobPath(uid))
	if err != nil {
		return fmt.Errorf("cannot store message %d: %w", uid, err)
	}
	return nil
}

// ReadBlob loads the message content. A nil limiter reads at full speed.
func (m *Mailbox) ReadBlob(ctx context.Context, uid uint32, limiter *rate.Limiter) ([]byte, error) {
	file, err := os.Open(m.BlobPath(uid))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("message %d not found in %s: %w", uid, m.Dir, err)
		}
		return nil, err
	}
	defer file.Close()

	reader := limitio.NewReaderWithContext(ctx, file)
	reader.SetLimiter(limiter)
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read message %d: %w", uid, err)
	}
	return body, nil
}
