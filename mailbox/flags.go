package mailbox

import "strings"

// Flags is a bitmask derived from the attributes of a LIST response.
// Most important flags have higher values.
type Flags uint32

const (
	FlagMarked        Flags = 0x1
	FlagUnmarked      Flags = 0x2
	FlagNoInferiors   Flags = 0x4
	FlagHasChildren   Flags = 0x8
	FlagHasNoChildren Flags = 0x10
	FlagNoSelect      Flags = 0x20
	FlagFlagged       Flags = 0x100
	FlagTrash         Flags = 0x200
	FlagSent          Flags = 0x400
	FlagJunk          Flags = 0x1000
	FlagDrafts        Flags = 0x2000
	FlagArchive       Flags = 0x4000
	FlagAll           Flags = 0x8000

	// SpecialMask selects the flags giving a mailbox a special use
	SpecialMask = FlagFlagged | FlagTrash | FlagSent | FlagJunk | FlagDrafts | FlagArchive | FlagAll
)

var attributeFlags = map[string]Flags{
	`\marked`:        FlagMarked,
	`\unmarked`:      FlagUnmarked,
	`\noinferiors`:   FlagNoInferiors,
	`\haschildren`:   FlagHasChildren,
	`\hasnochildren`: FlagHasNoChildren,
	`\all`:           FlagAll,
	`\archive`:       FlagArchive,
	`\drafts`:        FlagDrafts,
	`\junk`:          FlagJunk,
	`\sent`:          FlagSent,
	`\trash`:         FlagTrash,
	`\flagged`:       FlagFlagged,
	`\noselect`:      FlagNoSelect,
}

// FlagsFromAttributes converts the attributes into flags. Unknown attributes are ignored.
func FlagsFromAttributes(attributes []string) Flags {
	var flags Flags
	for _, attribute := range attributes {
		flags |= attributeFlags[strings.ToLower(attribute)]
	}
	return flags
}

// Has returns true when all the bits of flag are set
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Special returns the flags giving a special use to the mailbox
func (f Flags) Special() Flags {
	return f & SpecialMask
}

type letter struct {
	flag   Flags
	column int
	code   byte
}

// later entries override earlier ones sharing the same column
var letters = []letter{
	{FlagMarked, 1, '*'},
	{FlagUnmarked, 2, 'u'},
	{FlagNoInferiors, 0, '-'},
	{FlagHasChildren, 0, 'd'},
	{FlagHasNoChildren, 0, 'C'},
	{FlagAll, 3, 'A'},
	{FlagArchive, 3, 'a'},
	{FlagDrafts, 3, 'd'},
	{FlagJunk, 3, 'j'},
	{FlagSent, 3, 's'},
	{FlagTrash, 3, 't'},
	{FlagFlagged, 4, 'f'},
	{FlagNoSelect, 5, 'n'},
}

// Letters renders the flags as a fixed 6 columns code
func (f Flags) Letters() string {
	code := []byte("------")
	for _, l := range letters {
		if f&l.flag != 0 {
			code[l.column] = l.code
		}
	}
	return string(code)
}

// Legend explains the columns of Letters
var Legend = []string{
	"d - has children, C=no children",
	" * - Marked",
	"  u - Unmarked",
	"   A - A=All, a=archive, d=drafts, j=junk, s=sent, t=trash",
	"    f - flagged",
	"     n - not selectable",
}
