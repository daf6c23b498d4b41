package remote

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/parser"
	"github.com/rs/xid"
)

type Config struct {
	Host string
	Port int
	// TLS from the start of the connection (no STARTTLS)
	TLS                 bool
	SkipTLSVerification bool
	Username            string
	Password            string
	// AuthType is "login", "plain" or "md5". Leave empty to pick from the capabilities of the server
	AuthType string
	// Timeout of the network operations, no timeout when zero
	Timeout     time.Duration
	DebugLogger lib.Logger
}

// Address of the server in host:port form
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ProtocolError is the failure status returned by the server to a command
type ProtocolError struct {
	Command string
	Status  string
	Text    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s failed: %s %s", e.Command, e.Status, e.Text)
}

var literalSuffix = regexp.MustCompile(`\{(\d+)\}$`)

// Imap is a session on an IMAP server, talking the protocol directly
// so the raw responses can be handed over to the parser.
type Imap struct {
	conn         net.Conn
	reader       *bufio.Reader
	log          lib.Logger
	timeout      time.Duration
	delimiter    string
	capabilities []string
}

// Dial connects to the server and reads its greeting
func Dial(cfg Config) (*Imap, error) {
	log := lib.OrNoLog(cfg.DebugLogger)
	address := cfg.Address()
	dialer := &net.Dialer{Timeout: cfg.Timeout}

	log.Printf("Connecting to server %s (tls=%v)...", address, cfg.TLS)
	var conn net.Conn
	var err error
	if cfg.TLS {
		tlsConfig := &tls.Config{
			ServerName:         cfg.Host,
			InsecureSkipVerify: cfg.SkipTLSVerification,
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", address, tlsConfig)
	} else {
		conn, err = dialer.Dial("tcp", address)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", lib.ErrCannotConnect, address, err)
	}
	session := newImap(conn, log, cfg.Timeout)

	session.setDeadline()
	greeting, err := session.readResponse()
	session.clearDeadline()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w %s: no greeting: %w", lib.ErrCannotConnect, address, err)
	}
	text := greeting[0].Text
	if !strings.HasPrefix(text, "* OK") && !strings.HasPrefix(text, "* PREAUTH") {
		conn.Close()
		return nil, fmt.Errorf("%w %s: %s", lib.ErrCannotConnect, address, text)
	}
	log.Print("Connected")
	return session, nil
}

func newImap(conn net.Conn, log lib.Logger, timeout time.Duration) *Imap {
	return &Imap{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		log:     lib.OrNoLog(log),
		timeout: timeout,
	}
}

func (i *Imap) setDeadline() {
	if i.timeout > 0 {
		_ = i.conn.SetDeadline(time.Now().Add(i.timeout))
	}
}

func (i *Imap) clearDeadline() {
	if i.timeout > 0 {
		_ = i.conn.SetDeadline(time.Time{})
	}
}

// readResponse reads one response line from the server. A line ending with a
// literal marker {n} is followed by n bytes of literal and the rest of the line.
func (i *Imap) readResponse() ([]parser.Entry, error) {
	entries := make([]parser.Entry, 0, 1)
	for {
		line, err := i.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		match := literalSuffix.FindStringSubmatch(line)
		if match == nil {
			i.log.Printf("S: %s", line)
			entries = append(entries, parser.TextEntry(line))
			return entries, nil
		}
		size, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid literal size in %q", lib.ErrMalformedResponse, line)
		}
		literal := make([]byte, size)
		if _, err := io.ReadFull(i.reader, literal); err != nil {
			return nil, err
		}
		i.log.Printf("S: %s <%d bytes>", line, size)
		entries = append(entries, parser.LiteralEntry(line, literal))
	}
}

// send writes data to the server. The log shows display instead of the data.
func (i *Imap) send(data []byte, display string) error {
	i.log.Printf("C: %s", display)
	_, err := i.conn.Write(data)
	return err
}

// continuationFunc returns the data to send after a continuation request from the server
type continuationFunc func(text string) ([]byte, error)

// execute sends a command and returns the untagged responses received before
// the tagged status. A status other than OK is returned as a *ProtocolError.
func (i *Imap) execute(command string, continuation continuationFunc) ([][]parser.Entry, error) {
	return i.executeMasked(command, command, continuation)
}

func (i *Imap) executeMasked(command, display string, continuation continuationFunc) ([][]parser.Entry, error) {
	tag := strings.ToUpper(xid.New().String())
	name := commandName(command)

	i.setDeadline()
	defer i.clearDeadline()

	if err := i.send([]byte(tag+" "+command+"\r\n"), tag+" "+display); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var continuationErr error
	untagged := make([][]parser.Entry, 0)
	for {
		entries, err := i.readResponse()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		text := entries[0].Text
		switch {
		case strings.HasPrefix(text, tag+" "):
			status, message := splitStatus(strings.TrimPrefix(text, tag+" "))
			if continuationErr != nil {
				return untagged, continuationErr
			}
			if status != "OK" {
				return untagged, &ProtocolError{Command: name, Status: status, Text: message}
			}
			return untagged, nil

		case strings.HasPrefix(text, "+"):
			var data []byte
			if continuation == nil || continuationErr != nil {
				// cancel the command
				data = []byte("*")
			} else {
				data, continuationErr = continuation(strings.TrimSpace(strings.TrimPrefix(text, "+")))
				if continuationErr != nil {
					data = []byte("*")
				}
			}
			if err := i.send(append(data, '\r', '\n'), fmt.Sprintf("<%d bytes>", len(data))); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}

		case strings.HasPrefix(text, "* "):
			untagged = append(untagged, entries)

		default:
			i.log.Printf("unexpected response to %s: %q", name, text)
		}
	}
}

func commandName(command string) string {
	name, _, _ := strings.Cut(command, " ")
	return strings.ToUpper(name)
}

func splitStatus(text string) (string, string) {
	status, message, _ := strings.Cut(text, " ")
	return strings.ToUpper(status), message
}
