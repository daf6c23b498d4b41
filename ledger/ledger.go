// Package ledger maintains the metadata file of a downloaded mailbox.
//
// The file is only ever appended to: one line per stored message with its
// sequence number, UID, Message-Id and flags, separated by tabs.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/parser"
)

const (
	// Filename of the ledger inside a mailbox directory
	Filename = "metadata"
	// Header is the comment line starting a new ledger
	Header = "# msgno\tUID\tmsgid\tFLAGS"
)

// Entry is one message stored locally
type Entry struct {
	SeqNum    uint32
	UID       uint32
	MessageID string
	Flags     []string
}

// String returns the line representing the entry in the ledger file
func (e Entry) String() string {
	flags := make([]parser.Token, len(e.Flags))
	for i, flag := range e.Flags {
		flags[i] = parser.NewAtom(flag)
	}
	return fmt.Sprintf("%d\t%d\t%s\t%s", e.SeqNum, e.UID, sanitize(e.MessageID), parser.NewList(flags...).String())
}

// ParseEntry decodes one line of the ledger file
func ParseEntry(line string) (Entry, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) != 4 {
		return Entry{}, fmt.Errorf("expected 4 fields separated by tabs, found %d", len(fields))
	}
	seqNum, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid message number: %w", err)
	}
	uid, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid UID: %w", err)
	}
	tokens, err := parser.Parse(fields[3])
	if err != nil {
		return Entry{}, err
	}
	if len(tokens) != 1 || !tokens[0].IsList {
		return Entry{}, fmt.Errorf("%w: flags should be a list: %q", lib.ErrMalformedResponse, fields[3])
	}
	return Entry{
		SeqNum:    uint32(seqNum),
		UID:       uint32(uid),
		MessageID: fields[2],
		Flags:     tokens[0].Strings(),
	}, nil
}

// Path returns the ledger filename in the mailbox directory
func Path(dir string) string {
	return filepath.Join(dir, Filename)
}

// Exists returns true if the directory contains a ledger file
func Exists(dir string) bool {
	info, err := os.Stat(Path(dir))
	return err == nil && info.Mode().IsRegular()
}

// Read loads all the entries of the ledger file, ordered by UID.
// When the same UID is found more than once, the last line wins.
// Malformed lines are reported to the logger and skipped.
func Read(filename string, logger lib.Logger) ([]Entry, error) {
	logger = lib.OrNoLog(logger)
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read ledger: %w", err)
	}
	defer file.Close()

	byUID := make(map[uint32]Entry)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := ParseEntry(line)
		if err != nil {
			logger.Printf("%s:%d: skipping malformed line %q: %v", filename, lineNumber, line, err)
			continue
		}
		byUID[entry.UID] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read ledger: %w", err)
	}

	entries := make([]Entry, 0, len(byUID))
	for _, entry := range byUID {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UID < entries[j].UID
	})
	return entries, nil
}

// UIDs returns the set of UIDs found in the ledger file.
// A missing file is an empty ledger.
func UIDs(filename string, logger lib.Logger) (map[uint32]bool, error) {
	entries, err := Read(filename, logger)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[uint32]bool{}, nil
		}
		return nil, err
	}
	uids := make(map[uint32]bool, len(entries))
	for _, entry := range entries {
		uids[entry.UID] = true
	}
	return uids, nil
}

// tabs and line breaks would corrupt the line
func sanitize(value string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, value)
}
