package mailbox

import (
	"time"

	_ "github.com/emersion/go-message/charset"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// Summary is the short description of a message shown in listings
type Summary struct {
	// The message unique identifier.
	UID uint32
	// The message size.
	Size uint32
	// The decoded subject.
	Subject string
	// The decoded sender.
	From string
	// The date from the header.
	Date time.Time
	// The raw Date header.
	RawDate string
}

// NewSummary extracts the summary from the header of a message
func NewSummary(uid, size uint32, header []byte) (Summary, error) {
	summary := Summary{
		UID:  uid,
		Size: size,
	}
	h, err := ReadHeader(header)
	if err != nil {
		return summary, err
	}
	mh := mail.Header{Header: message.Header{Header: h}}
	summary.Subject, err = mh.Subject()
	if err != nil {
		summary.Subject = h.Get("Subject")
	}
	summary.From, err = mh.Text("From")
	if err != nil {
		summary.From = h.Get("From")
	}
	summary.RawDate = h.Get("Date")
	summary.Date, _ = mh.Date()
	return summary, nil
}
