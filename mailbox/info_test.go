package mailbox

import (
	"testing"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListResponse(t *testing.T) {
	info, err := ParseListResponse(`(\flagged \hasnochildren) "." "INBOX"`)
	require.NoError(t, err)

	assert.Equal(t, "INBOX", info.Name)
	assert.Equal(t, ".", info.Delimiter)
	assert.Equal(t, []string{`\flagged`, `\hasnochildren`}, info.Attributes)
	assert.Equal(t, FlagFlagged|FlagHasNoChildren, info.Flags)
	assert.Equal(t, "C---f-", info.Letters())
}

func TestParseListResponseVariants(t *testing.T) {
	testCases := []struct {
		line      string
		name      string
		delimiter string
		flags     Flags
	}{
		{`() "/" Archive`, "Archive", "/", 0},
		{`(\Noselect \HasChildren) NIL "Public"`, "Public", "", FlagNoSelect | FlagHasChildren},
		{`(\HasNoChildren \Sent) "/" "Sent Items"`, "Sent Items", "/", FlagHasNoChildren | FlagSent},
		{`(\X-Unknown \TRASH) "." "Deleted"`, "Deleted", ".", FlagTrash},
		{`() "/" "Entw&APw-rfe"`, "Entwürfe", "/", 0},
		{`() "/" inbox`, "INBOX", "/", 0},
	}
	for _, testCase := range testCases {
		t.Run(testCase.line, func(t *testing.T) {
			info, err := ParseListResponse(testCase.line)
			require.NoError(t, err)
			assert.Equal(t, testCase.name, info.Name)
			assert.Equal(t, testCase.delimiter, info.Delimiter)
			assert.Equal(t, testCase.flags, info.Flags)
		})
	}
}

func TestParseListResponseMalformed(t *testing.T) {
	lines := []string{
		`(\HasNoChildren "/" "INBOX"`,
		`"/" "INBOX"`,
		`(\HasNoChildren) "/"`,
		`(\HasNoChildren) "/" ("INBOX")`,
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			_, err := ParseListResponse(line)
			assert.ErrorIs(t, err, lib.ErrMalformedResponse)
		})
	}
}

func TestFlagsAreCaseInsensitive(t *testing.T) {
	assert.Equal(t, FlagsFromAttributes([]string{`\Drafts`, `\HasChildren`}), FlagsFromAttributes([]string{`\DRAFTS`, `\haschildren`}))
	assert.Equal(t, Flags(0), FlagsFromAttributes([]string{`\Unknown`, "Drafts", ""}))
}

func TestLetters(t *testing.T) {
	testCases := []struct {
		flags    Flags
		expected string
	}{
		{0, "------"},
		{FlagNoInferiors, "------"},
		{FlagHasChildren, "d-----"},
		{FlagHasNoChildren | FlagMarked, "C*----"},
		{FlagUnmarked | FlagNoSelect, "--u--n"},
		{FlagAll, "---A--"},
		{FlagArchive, "---a--"},
		{FlagDrafts, "---d--"},
		{FlagJunk, "---j--"},
		{FlagSent | FlagFlagged, "---sf-"},
		{FlagTrash, "---t--"},
		{FlagAll | FlagTrash, "---t--"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.expected, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.flags.Letters())
		})
	}
}

func TestChangeDelimiter(t *testing.T) {
	assert.Equal(t, "Archive.2020", ChangeDelimiter("Archive/2020", "/", "."))
	assert.Equal(t, "INBOX.Sent", ChangeDelimiter("INBOX.Sent", "/", "."))
	assert.Equal(t, "a/b", ChangeDelimiter("a/b", "/", ""))
	assert.Equal(t, "a/b", ChangeDelimiter("a/b", "/", "/"))
}
