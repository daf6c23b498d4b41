package storage

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/creativeprojects/imapmirror/ledger"
	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/mailbox"
	"github.com/creativeprojects/imapmirror/parser"
	"github.com/creativeprojects/imapmirror/storage/history"
	"github.com/creativeprojects/imapmirror/storage/local"
)

const itemsIdentifier = "(UID RFC822.HEADER)"

// SelectDirectories filters the local mailbox names. The exclude patterns apply to
// the full name, the include patterns and the extra patterns to the full name or its last element.
func SelectDirectories(names []string, filter lib.Filter, patterns ...string) []string {
	patterns = append(append(make([]string, 0, len(filter.Include)+len(patterns)), filter.Include...), patterns...)
	selected := make([]string, 0, len(names))
	for _, name := range names {
		if filter.Excluded(name) {
			continue
		}
		if len(patterns) > 0 && !lib.Included(name, patterns) && !lib.Included(path.Base(name), patterns) {
			continue
		}
		selected = append(selected, name)
	}
	return selected
}

// Upload the local mailboxes, well-known mailboxes first. A mailbox failing doesn't stop the others.
func (e *Engine) Upload(ctx context.Context, names []string) []Result {
	names = append(make([]string, 0, len(names)), names...)
	mailbox.SortNames(names)
	results := make([]Result, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		results = append(results, e.UploadMailbox(ctx, name))
	}
	return results
}

// UploadMailbox sends the messages of the local mailbox not already present in the remote mailbox.
// The remote mailbox must be empty unless the Force option is set.
func (e *Engine) UploadMailbox(ctx context.Context, name string) (result Result) {
	remoteName := e.RemoteName(name)
	result = Result{
		Mailbox:   remoteName,
		Direction: history.Upload,
	}
	defer func() {
		e.record(result)
	}()

	mbox, err := e.store.Open(name)
	if err != nil {
		result.Err = err
		return
	}
	entries, err := ledger.Read(mbox.Ledger(), e.log)
	if err != nil {
		result.Err = err
		return
	}
	result.Messages = len(entries)

	count, err := e.prepareRemote(remoteName)
	if err != nil {
		result.Err = err
		return
	}
	if count > 0 && !e.config.Force {
		result.Err = fmt.Errorf("%w: %q contains %d messages, not uploading any message", lib.ErrMailboxNotEmpty, remoteName, count)
		return
	}

	remoteIDs := make(map[string]bool)
	if count > 0 {
		remoteIDs, err = e.remoteMessageIDs()
		if err != nil {
			result.Err = err
			return
		}
	}

	progress := e.startProgress(remoteName, len(entries))
	defer progress.Done()

	for index, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Err = err
			return
		}
		if remoteIDs[entry.MessageID] {
			e.log.Printf("not uploading message %d, %s: already on server", entry.UID, entry.MessageID)
			result.Skipped++
		} else if err := e.uploadMessage(ctx, mbox, remoteName, entry); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result.Err = err
				return
			}
			e.log.Printf("failed to upload message %d: %v", entry.UID, err)
			result.Failed++
		} else {
			result.Transferred++
		}
		progress.Update(index + 1)
	}
	return
}

// prepareRemote deletes (optionally) and creates the remote mailbox, then returns its number of messages
func (e *Engine) prepareRemote(remoteName string) (uint32, error) {
	if e.config.DeleteFirst {
		e.log.Printf("delete mailbox %q", remoteName)
		if !e.config.DryRun {
			if err := e.session.Delete(remoteName); err != nil {
				e.log.Printf("cannot delete mailbox %q: %v", remoteName, err)
			}
		}
	}
	if !e.config.DryRun {
		// the mailbox may already exist
		if err := e.session.Create(remoteName); err != nil {
			e.log.Printf("cannot create mailbox %q: %v", remoteName, err)
		}
	}
	count, err := e.session.Select(remoteName, e.config.DryRun)
	if err != nil {
		if e.config.DryRun {
			e.log.Printf("mailbox %q would be created", remoteName)
			return 0, nil
		}
		return 0, fmt.Errorf("cannot select mailbox: %w", err)
	}
	if e.config.DryRun && e.config.DeleteFirst {
		return 0, nil
	}
	e.log.Printf("mailbox %q opened, %d messages", remoteName, count)
	return count, nil
}

// remoteMessageIDs returns the identifiers of all the messages of the selected mailbox
func (e *Engine) remoteMessageIDs() (map[string]bool, error) {
	entries, err := e.session.Fetch("1:*", itemsIdentifier)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch message list: %w", err)
	}
	records, err := parser.DecodeFetch(entries)
	if err != nil {
		e.log.Printf("message list: %v", err)
	}
	ids := make(map[string]bool, len(records))
	for _, record := range records {
		if !record.Has(parser.FieldUID) {
			// unsolicited update
			continue
		}
		ids[mailbox.MessageID(record.Header, record.UID)] = true
	}
	return ids, nil
}

func (e *Engine) uploadMessage(ctx context.Context, mbox *local.Mailbox, remoteName string, entry ledger.Entry) error {
	if e.config.DryRun {
		if _, found := mbox.BlobSize(entry.UID); !found {
			return fmt.Errorf("message file %s not found", mbox.BlobPath(entry.UID))
		}
		e.log.Printf("would upload message %d to %q", entry.UID, remoteName)
		return nil
	}
	body, err := mbox.ReadBlob(ctx, entry.UID, e.bandwidth)
	if err != nil {
		return err
	}
	if e.pace != nil {
		if err := e.pace.Wait(ctx); err != nil {
			return err
		}
	}
	flags := lib.StripRecentFlag(entry.Flags)
	e.log.Printf("uploading message %d, %d bytes to %q", entry.UID, len(body), remoteName)
	return e.session.Append(remoteName, flags, body)
}
