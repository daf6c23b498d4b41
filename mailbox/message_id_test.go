package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageID(t *testing.T) {
	testCases := []struct {
		header   string
		uid      uint32
		expected string
	}{
		{"Message-Id: <abc@example.com>\r\nSubject: hi\r\n\r\n", 1, "<abc@example.com>"},
		{"Subject: hi\r\nMessage-ID:   <def@example.com>  \r\n", 2, "<def@example.com>"},
		{"message-id: <ghi@example.com>", 3, "<ghi@example.com>"},
		{"Subject: no id\r\n\r\n", 4, "<UID-4>"},
		{"", 5, "<UID-5>"},
		{"not a header at all", 6, "<UID-6>"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.expected, func(t *testing.T) {
			assert.Equal(t, testCase.expected, MessageID([]byte(testCase.header), testCase.uid))
		})
	}
}

func TestSummary(t *testing.T) {
	header := "From: =?utf-8?q?J=C3=A9r=C3=B4me?= <jerome@example.com>\r\n" +
		"Subject: =?ISO-8859-1?Q?caf=E9?=\r\n" +
		"Date: Mon, 02 Jan 2006 15:04:05 +0000\r\n\r\n"
	summary, err := NewSummary(10, 2048, []byte(header))
	require.NoError(t, err)

	assert.Equal(t, uint32(10), summary.UID)
	assert.Equal(t, uint32(2048), summary.Size)
	assert.Equal(t, "café", summary.Subject)
	assert.Equal(t, "Jérôme <jerome@example.com>", summary.From)
	assert.Equal(t, 2006, summary.Date.Year())
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 +0000", summary.RawDate)
}
