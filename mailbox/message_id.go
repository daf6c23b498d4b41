package mailbox

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/emersion/go-message/textproto"
)

// MessageID returns the Message-Id of the header, or an identifier
// synthesized from the UID when the header has none
func MessageID(header []byte, uid uint32) string {
	h, err := ReadHeader(header)
	if err == nil {
		if id := strings.TrimSpace(h.Get("Message-Id")); id != "" {
			return id
		}
	}
	return SyntheticMessageID(uid)
}

// SyntheticMessageID is the identifier given to a message without Message-Id
func SyntheticMessageID(uid uint32) string {
	return "<UID-" + strconv.FormatUint(uint64(uid), 10) + ">"
}

// ReadHeader parses the header of a message. The blank line ending
// the header section is optional.
func ReadHeader(header []byte) (textproto.Header, error) {
	switch {
	case bytes.HasSuffix(header, []byte("\n\n")), bytes.HasSuffix(header, []byte("\r\n\r\n")):
	case bytes.HasSuffix(header, []byte("\n")):
		header = append(header[:len(header):len(header)], '\r', '\n')
	default:
		header = append(header[:len(header):len(header)], '\r', '\n', '\r', '\n')
	}
	return textproto.ReadHeader(bufio.NewReader(bytes.NewReader(header)))
}
