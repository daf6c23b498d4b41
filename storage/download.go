package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/creativeprojects/imapmirror/ledger"
	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/mailbox"
	"github.com/creativeprojects/imapmirror/parser"
	"github.com/creativeprojects/imapmirror/storage/history"
	"github.com/creativeprojects/imapmirror/storage/local"
	"github.com/dustin/go-humanize"
)

const (
	itemsCheck    = "(UID RFC822.SIZE)"
	itemsMetadata = "(FLAGS RFC822.HEADER)"
	itemsMessage  = "(FLAGS RFC822)"
)

// Download all the mailboxes in order. A mailbox failing doesn't stop the others.
func (e *Engine) Download(ctx context.Context, mailboxes []mailbox.Info) []Result {
	results := make([]Result, 0, len(mailboxes))
	for _, info := range mailboxes {
		if ctx.Err() != nil {
			break
		}
		if !info.Selectable() {
			e.log.Printf("skipping mailbox %q: not selectable", info.Name)
			continue
		}
		results = append(results, e.DownloadMailbox(ctx, info))
	}
	return results
}

// DownloadMailbox copies the messages of the remote mailbox not already stored locally
func (e *Engine) DownloadMailbox(ctx context.Context, info mailbox.Info) (result Result) {
	result = Result{
		Mailbox:   info.Name,
		Direction: history.Download,
	}
	defer func() {
		e.record(result)
	}()

	count, err := e.session.Select(info.Name, true)
	if err != nil {
		result.Err = fmt.Errorf("cannot select mailbox: %w", err)
		return
	}
	result.Messages = int(count)
	e.log.Printf("%s: %d messages", info.Name, count)

	mbox, err := e.localMailbox(info.Name)
	if err != nil {
		result.Err = err
		return
	}
	if count == 0 {
		return
	}

	uids, err := ledger.UIDs(mbox.Ledger(), e.log)
	if err != nil {
		result.Err = err
		return
	}
	var writer *ledger.Writer
	if !e.config.DryRun {
		writer, err = ledger.Open(mbox.Dir)
		if err != nil {
			result.Err = err
			return
		}
		defer writer.Close()
	}

	progress := e.startProgress(info.Name, int(count))
	defer progress.Done()

	for seqNum := uint32(1); seqNum <= count; seqNum++ {
		if err := ctx.Err(); err != nil {
			result.Err = err
			return
		}
		transferred, err := e.downloadMessage(ctx, mbox, seqNum, uids, writer)
		if err != nil {
			result.Err = fmt.Errorf("message %d: %w", seqNum, err)
			return
		}
		if transferred {
			result.Transferred++
		} else {
			result.Skipped++
		}
		progress.Update(int(seqNum))
	}
	return
}

func (e *Engine) localMailbox(name string) (*local.Mailbox, error) {
	if !e.config.DryRun {
		return e.store.Create(name)
	}
	dir, err := e.store.Path(name)
	if err != nil {
		return nil, err
	}
	return &local.Mailbox{Name: name, Dir: dir}, nil
}

// downloadMessage returns true if the message needed a transfer
func (e *Engine) downloadMessage(ctx context.Context, mbox *local.Mailbox, seqNum uint32, uids map[uint32]bool, writer *ledger.Writer) (bool, error) {
	check, err := e.fetchOne(seqNum, itemsCheck)
	if err != nil {
		return false, err
	}
	if !check.Has(parser.FieldUID) || !check.Has(parser.FieldSize) {
		return false, fmt.Errorf("%w: missing UID or size", lib.ErrMalformedResponse)
	}
	uid := check.UID

	if mbox.HasBlob(uid, int64(check.Size)) {
		if !uids[uid] && writer != nil {
			// the message was stored but the ledger line is missing
			meta, err := e.fetchOne(seqNum, itemsMetadata)
			if err != nil {
				return false, err
			}
			err = writer.Append(ledger.Entry{
				SeqNum:    seqNum,
				UID:       uid,
				MessageID: mailbox.MessageID(meta.Header, uid),
				Flags:     meta.Flags,
			})
			if err != nil {
				return false, err
			}
			uids[uid] = true
		}
		return false, nil
	}

	if e.config.DryRun {
		e.log.Printf("would download message %d, %s", uid, humanize.IBytes(uint64(check.Size)))
		return true, nil
	}
	if e.pace != nil {
		if err := e.pace.Wait(ctx); err != nil {
			return false, err
		}
	}
	e.log.Printf("download message %d, %s", uid, humanize.IBytes(uint64(check.Size)))
	message, err := e.fetchOne(seqNum, itemsMessage)
	if err != nil {
		return false, err
	}
	if !message.Has(parser.FieldBody) {
		return false, fmt.Errorf("%w: missing message content", lib.ErrMalformedResponse)
	}
	if len(message.Body) != int(check.Size) {
		e.log.Printf("message %d: server announced %d bytes but sent %d", uid, check.Size, len(message.Body))
	}
	err = mbox.WriteBlob(ctx, uid, message.Body, e.bandwidth)
	if err != nil {
		return false, err
	}
	err = writer.Append(ledger.Entry{
		SeqNum:    seqNum,
		UID:       uid,
		MessageID: mailbox.MessageID(message.Body, uid),
		Flags:     message.Flags,
	})
	if err != nil {
		return false, err
	}
	uids[uid] = true
	return true, nil
}

// fetchOne returns the record of the message from the FETCH reply
func (e *Engine) fetchOne(seqNum uint32, items string) (*parser.Record, error) {
	entries, err := e.session.Fetch(strconv.FormatUint(uint64(seqNum), 10), items)
	if err != nil {
		return nil, err
	}
	records, err := parser.DecodeFetch(entries)
	if err != nil {
		e.log.Printf("fetch %d %s: %v", seqNum, items, err)
	}
	for _, record := range records {
		if record.SeqNum == seqNum {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%w: no data returned for message %d", lib.ErrMalformedResponse, seqNum)
}
