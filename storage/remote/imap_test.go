package remote

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/parser"
	"github.com/creativeprojects/imapmirror/storage/test"
	compress "github.com/emersion/go-imap-compress"
	"github.com/emersion/go-imap/backend/memory"
	"github.com/emersion/go-imap/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
)

// startServer runs an IMAP server with a memory backend, containing one user
// "username" with password "password" and one message in the INBOX
func startServer(t *testing.T) (string, int) {
	t.Helper()
	// Create a memory backend
	be := memory.New()

	// Create a new server
	server := server.New(be)
	// Since we will use this server for testing only, we can allow plain text
	// authentication over non-encrypted connections
	server.AllowInsecureAuth = true
	server.Enable(compress.NewExtension())

	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)

	t.Logf("Starting IMAP server at %s", listener.Addr().String())
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = server.Serve(listener)
	}()

	t.Cleanup(func() {
		// close the server
		_ = server.Close()
		wg.Wait()
	})

	host, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	portNumber, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, portNumber
}

func testConfig(t *testing.T, host string, port int) Config {
	return Config{
		Host:        host,
		Port:        port,
		Username:    "username",
		Password:    "password",
		Timeout:     5 * time.Second,
		DebugLogger: lib.NewTestLogger(t, "imap"),
	}
}

func TestImapSession(t *testing.T) {
	host, port := startServer(t)

	session, err := NewImap(testConfig(t, host, port))
	require.NoError(t, err)

	test.RunTestsOnSession(t, session)

	err = session.Close()
	assert.NoError(t, err)
}

func TestLoginTypes(t *testing.T) {
	host, port := startServer(t)

	for _, authType := range []string{"", AuthLogin, AuthPlain} {
		t.Run("auth "+authType, func(t *testing.T) {
			cfg := testConfig(t, host, port)
			cfg.AuthType = authType
			session, err := NewImap(cfg)
			require.NoError(t, err)
			assert.Equal(t, "/", session.Delimiter())
			assert.NoError(t, session.Close())
		})
	}
}

func TestLoginFailure(t *testing.T) {
	host, port := startServer(t)

	for _, authType := range []string{AuthLogin, AuthPlain} {
		t.Run("auth "+authType, func(t *testing.T) {
			cfg := testConfig(t, host, port)
			cfg.AuthType = authType
			cfg.Password = "wrong"
			_, err := NewImap(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, lib.ErrCannotLogin)

			var protocolError *ProtocolError
			assert.ErrorAs(t, err, &protocolError)
		})
	}

	cfg := testConfig(t, host, port)
	cfg.AuthType = "kerberos"
	_, err := NewImap(cfg)
	assert.ErrorIs(t, err, lib.ErrCannotLogin)
}

func TestCannotConnect(t *testing.T) {
	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	address := listener.Addr().(*net.TCPAddr)
	// nothing listening after this
	listener.Close()

	_, err = NewImap(testConfig(t, address.IP.String(), address.Port))
	assert.ErrorIs(t, err, lib.ErrCannotConnect)
}

func TestCapabilities(t *testing.T) {
	host, port := startServer(t)

	session, err := Dial(testConfig(t, host, port))
	require.NoError(t, err)
	defer session.Close()

	capabilities, err := session.Capabilities()
	require.NoError(t, err)
	assert.Contains(t, capabilities, "IMAP4rev1")
	assert.Equal(t, AuthPlain, session.defaultAuthType())
}

func TestDefaultAuthType(t *testing.T) {
	testCases := []struct {
		capabilities []string
		expected     string
	}{
		{[]string{"IMAP4rev1"}, AuthLogin},
		{[]string{"IMAP4rev1", "AUTH=PLAIN"}, AuthPlain},
		{[]string{"IMAP4rev1", "AUTH=XOAUTH2", "AUTH=PLAIN"}, AuthPlain},
		{[]string{"IMAP4rev1", "AUTH=XOAUTH2", "AUTH=CRAM-MD5", "AUTH=PLAIN"}, AuthMD5},
		{[]string{"IMAP4rev1", "AUTH=XOAUTH2", "AUTH=GSSAPI"}, AuthLogin},
		{[]string{"auth=plain"}, AuthPlain},
	}
	for _, testCase := range testCases {
		session := &Imap{
			log:          lib.NewTestLogger(t, "imap"),
			capabilities: testCase.capabilities,
		}
		assert.Equal(t, testCase.expected, session.defaultAuthType(), strings.Join(testCase.capabilities, " "))
	}
}

func TestReadResponseWithLiterals(t *testing.T) {
	input := "* 1 FETCH (UID 10 RFC822 {12}\r\nHello\r\nWorld FLAGS (\\Seen))\r\n" +
		"* 2 FETCH (UID 11)\r\n"
	session := &Imap{
		reader: bufio.NewReader(strings.NewReader(input)),
		log:    lib.NewTestLogger(t, "imap"),
	}

	entries, err := session.readResponse()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].HasLiteral)
	assert.Equal(t, "* 1 FETCH (UID 10 RFC822 {12}", entries[0].Text)
	assert.Equal(t, "Hello\r\nWorld", string(entries[0].Literal))
	assert.Equal(t, " FLAGS (\\Seen))", entries[1].Text)

	entries, err = session.readResponse()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "* 2 FETCH (UID 11)", entries[0].Text)
}

func TestListLine(t *testing.T) {
	line, ok := listLine([]parser.Entry{parser.TextEntry(`* LIST (\HasNoChildren) "/" INBOX`)})
	assert.True(t, ok)
	assert.Equal(t, `(\HasNoChildren) "/" INBOX`, line)

	line, ok = listLine([]parser.Entry{
		parser.LiteralEntry(`* LIST () "/" {9}`, []byte(`My "Box"`+"!")),
		parser.TextEntry(""),
	})
	assert.True(t, ok)
	assert.Equal(t, `() "/" "My \"Box\"!"`, line)

	_, ok = listLine([]parser.Entry{parser.TextEntry(`* LSUB () "/" INBOX`)})
	assert.False(t, ok)
}

func TestQuoteName(t *testing.T) {
	assert.Equal(t, `"INBOX"`, quoteName("inbox"))
	assert.Equal(t, `"Sent Items"`, quoteName("Sent Items"))
	assert.Equal(t, `"Envoy&AOk-s"`, quoteName("Envoyés"))
}

func TestCramMD5(t *testing.T) {
	// example from RFC 2195
	client := NewCramMD5Client("tim", "tanstaaftanstaaf")
	mechanism, initial, err := client.Start()
	require.NoError(t, err)
	assert.Equal(t, "CRAM-MD5", mechanism)
	assert.Nil(t, initial)

	response, err := client.Next([]byte("<1896.697170952@postoffice.reston.mci.net>"))
	require.NoError(t, err)
	assert.Equal(t, "tim b913a602c7eda7a495b4e6e7334d3890", string(response))
}

func TestTargets(t *testing.T) {
	targets := Targets("example.com", 0, false, false)
	require.Len(t, targets, 10)
	assert.Equal(t, Target{Host: "mail.example.com", Port: 993, TLS: true}, targets[0])
	assert.Equal(t, Target{Host: "mail.example.com", Port: 143, TLS: false}, targets[1])
	assert.Equal(t, Target{Host: "example.com", Port: 993, TLS: true}, targets[6])
	assert.Equal(t, Target{Host: "pop.example.com", Port: 143, TLS: false}, targets[9])

	targets = Targets("imap.example.com", 1143, true, true)
	assert.Equal(t, []Target{{Host: "imap.example.com", Port: 1143, TLS: true}}, targets)
}

func TestProbe(t *testing.T) {
	host, port := startServer(t)

	targets := Targets(host, port, false, true)
	reports := Probe(context.Background(), targets, 5*time.Second, false, lib.NewTestLogger(t, "probe"))
	require.Len(t, reports, 2)
	// the server doesn't speak TLS
	assert.Error(t, reports[0].Err)

	found := FirstSuccess(reports)
	require.NotNil(t, found)
	assert.False(t, found.TLS)
	assert.Equal(t, port, found.Port)
	assert.Contains(t, found.Capabilities, "IMAP4rev1")
	// the compress extension of the server announces COMPRESS without the algorithm
	assert.Contains(t, found.Capabilities, "COMPRESS")
	assert.False(t, found.Compress)
	assert.False(t, found.UIDPlus)
}

func TestProbeNothingFound(t *testing.T) {
	reports := Probe(context.Background(), nil, 0, true, nil)
	assert.Empty(t, reports)
	assert.Nil(t, FirstSuccess(reports))
}
