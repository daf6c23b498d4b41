package mem

type memMessage struct {
	uid     uint32
	content []byte
	flags   []string
}

type memMailbox struct {
	attributes  []string
	uidValidity uint32
	currentUid  uint32
	// in sequence order
	messages []*memMessage
}

func (m *memMailbox) newMessage(content []byte, flags []string) uint32 {
	m.currentUid++
	m.messages = append(m.messages, &memMessage{
		uid:     m.currentUid,
		content: content,
		flags:   flags,
	})
	return m.currentUid
}

// header returns the header section of the message, including the blank line
func (m *memMessage) header() []byte {
	for i := 0; i+1 < len(m.content); i++ {
		if m.content[i] != '\n' {
			continue
		}
		if m.content[i+1] == '\n' {
			return m.content[:i+2]
		}
		if m.content[i+1] == '\r' && i+2 < len(m.content) && m.content[i+2] == '\n' {
			return m.content[:i+3]
		}
	}
	return m.content
}
