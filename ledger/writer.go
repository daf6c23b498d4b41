package ledger

import (
	"fmt"
	"os"
)

// Writer appends entries to a ledger file
type Writer struct {
	file *os.File
}

// Open the ledger of the mailbox directory for appending. The header line is
// written when the file is created.
func Open(dir string) (*Writer, error) {
	filename := Path(dir)
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("cannot open ledger: %w", err)
	}
	if info.Size() == 0 {
		if _, err = fmt.Fprintln(file, Header); err != nil {
			file.Close()
			return nil, fmt.Errorf("cannot write ledger header: %w", err)
		}
	}
	return &Writer{file: file}, nil
}

// Append writes one line to the file
func (w *Writer) Append(entry Entry) error {
	_, err := fmt.Fprintln(w.file, entry.String())
	if err != nil {
		return fmt.Errorf("cannot append to ledger: %w", err)
	}
	return nil
}

// Close the file
func (w *Writer) Close() error {
	return w.file.Close()
}
