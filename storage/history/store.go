// Package history records the download and upload passes in a bbolt database.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/creativeprojects/imapmirror/lib"
	bolt "go.etcd.io/bbolt"
)

const (
	metadataBucket = "metadata"
	accountsBucket = "accounts"
	versionKey     = "version"
	fileVersion    = 1
)

// Direction of a pass
const (
	Download = "download"
	Upload   = "upload"
)

// Entry is one pass over a mailbox
type Entry struct {
	Date        time.Time
	Direction   string
	Mailbox     string
	Messages    int
	Transferred int
	Skipped     int
	Failed      int
	Error       string
	DryRun      bool
}

type Store struct {
	dbFile string
	db     *bolt.DB
	log    lib.Logger
	tag    string
}

// Open the history database. Entries are recorded under the account tag.
func Open(filename, accountTag string) (*Store, error) {
	return OpenWithLogger(filename, accountTag, nil)
}

func OpenWithLogger(filename, accountTag string, logger lib.Logger) (*Store, error) {
	logger = lib.OrNoLog(logger)
	options := *bolt.DefaultOptions
	options.Timeout = 10 * time.Second

	err := os.MkdirAll(filepath.Dir(filename), 0o700)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", filename, err)
	}

	db, err := bolt.Open(filename, 0o600, &options)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", filename, err)
	}
	store := &Store{
		dbFile: filename,
		db:     db,
		log:    logger,
		tag:    accountTag,
	}
	err = store.init()
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) init() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return err
		}
		if bucket.Get([]byte(versionKey)) != nil {
			return nil
		}
		return bucket.Put([]byte(versionKey), SerializeSequence(fileVersion))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record saves one entry
func (s *Store) Record(entry Entry) error {
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		accounts, err := tx.CreateBucketIfNotExists([]byte(accountsBucket))
		if err != nil {
			return err
		}
		account, err := accounts.CreateBucketIfNotExists([]byte(s.tag))
		if err != nil {
			return err
		}
		bucket, err := account.CreateBucketIfNotExists([]byte(entry.Mailbox))
		if err != nil {
			return err
		}
		sequence, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		value, err := SerializeObject(&entry)
		if err != nil {
			return err
		}
		s.log.Printf("history: %s %q %d/%d", entry.Direction, entry.Mailbox, entry.Transferred, entry.Messages)
		return bucket.Put(SerializeSequence(sequence), value)
	})
}

// Mailboxes returns the names of the mailboxes with a history for the account
func (s *Store) Mailboxes() ([]string, error) {
	names := make([]string, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		account := s.account(tx)
		if account == nil {
			return nil
		}
		return account.ForEach(func(k, v []byte) error {
			if v == nil {
				names = append(names, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// List returns the history of the mailbox, oldest first
func (s *Store) List(name string) ([]Entry, error) {
	entries := make([]Entry, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		account := s.account(tx)
		if account == nil {
			return nil
		}
		bucket := account.Bucket([]byte(name))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			entry, err := DeserializeObject[Entry](v)
			if err != nil {
				s.log.Printf("cannot decode history entry %d of %q: %v", DeserializeSequence(k), name, err)
				return nil
			}
			entries = append(entries, *entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

// Last returns the most recent entry of the mailbox, or nil
func (s *Store) Last(name string) (*Entry, error) {
	entries, err := s.List(name)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[len(entries)-1], nil
}

func (s *Store) account(tx *bolt.Tx) *bolt.Bucket {
	accounts := tx.Bucket([]byte(accountsBucket))
	if accounts == nil {
		return nil
	}
	return accounts.Bucket([]byte(s.tag))
}
