package lib

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmail(t *testing.T) {
	for i := 0; i < 100; i++ {
		msg := GenerateEmail("user1@example.com", "user2@example.com", uint32(i), 10, 1000)
		assert.True(t, bytes.Contains(msg, []byte(fmt.Sprintf("Message-ID: <%d@localhost/>\r\n", i))))
	}
}

func TestGenerateEmailWithoutID(t *testing.T) {
	msg := GenerateEmailWithoutID("user1@example.com", "user2@example.com", 10, 10)
	assert.False(t, bytes.Contains(msg, []byte("Message-ID")))
}

func TestGenerateFlags(t *testing.T) {
	maxInt := 5
	for i := 0; i < 10000; i++ {
		flags := GenerateFlags(maxInt)
		require.NotNil(t, flags)
		require.Less(t, len(flags), maxInt)
	}
}
