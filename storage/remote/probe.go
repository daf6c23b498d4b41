package remote

import (
	"context"
	"crypto/tls"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/creativeprojects/imapmirror/lib"
	compress "github.com/emersion/go-imap-compress"
	uidplus "github.com/emersion/go-imap-uidplus"
	"github.com/emersion/go-imap/client"
)

const (
	DefaultPort    = 143
	DefaultTLSPort = 993
	// DefaultProbeTimeout is used when probing without a timeout
	DefaultProbeTimeout = 10 * time.Second
)

var hostPrefixes = []string{"mail.", "imap.", "imap4.", "", "pop."}

// Target is a server address to probe
type Target struct {
	Host string
	Port int
	TLS  bool
}

func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Report of the connection to one target
type Report struct {
	Target
	Err          error
	Capabilities []string
	UIDPlus      bool
	Compress     bool
}

// Targets returns the connections to try for the domain. With exactHost the
// domain is used as is, otherwise it is tried with the usual host name prefixes.
// A zero port means the default port for the security of the connection.
func Targets(domain string, port int, tlsOnly, exactHost bool) []Target {
	prefixes := hostPrefixes
	if exactHost {
		prefixes = []string{""}
	}
	security := []bool{true, false}
	if tlsOnly {
		security = []bool{true}
	}
	targets := make([]Target, 0, len(prefixes)*len(security))
	for _, prefix := range prefixes {
		for _, useTLS := range security {
			target := Target{
				Host: prefix + domain,
				Port: port,
				TLS:  useTLS,
			}
			if target.Port == 0 {
				target.Port = DefaultPort
				if useTLS {
					target.Port = DefaultTLSPort
				}
			}
			targets = append(targets, target)
		}
	}
	return targets
}

// Probe tries to connect to the targets in order. It stops at the first
// successful connection unless all is set. The capabilities are only read
// on successful connections.
func Probe(ctx context.Context, targets []Target, timeout time.Duration, all bool, logger lib.Logger) []Report {
	logger = lib.OrNoLog(logger)
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	reports := make([]Report, 0, len(targets))
	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		logger.Printf("Trying %s, tls=%v ...", target.Address(), target.TLS)
		report := probeTarget(target, timeout, logger)
		reports = append(reports, report)
		if report.Err == nil && !all {
			break
		}
	}
	return reports
}

// FirstSuccess returns the first successful report, or nil
func FirstSuccess(reports []Report) *Report {
	for i := range reports {
		if reports[i].Err == nil {
			return &reports[i]
		}
	}
	return nil
}

func probeTarget(target Target, timeout time.Duration, logger lib.Logger) Report {
	report := Report{Target: target}
	dialer := &net.Dialer{Timeout: timeout}

	var imapClient *client.Client
	var err error
	if target.TLS {
		imapClient, err = client.DialWithDialerTLS(dialer, target.Address(), &tls.Config{ServerName: target.Host})
	} else {
		imapClient, err = client.DialWithDialer(dialer, target.Address())
	}
	if err != nil {
		logger.Printf("failed to connect: %v", err)
		report.Err = err
		return report
	}
	defer func() {
		_ = imapClient.Logout()
	}()
	imapClient.Timeout = timeout
	logger.Print("success")

	caps, err := imapClient.Capability()
	if err != nil {
		logger.Printf("cannot read capabilities: %v", err)
		return report
	}
	report.Capabilities = make([]string, 0, len(caps))
	for capability, supported := range caps {
		if supported {
			report.Capabilities = append(report.Capabilities, capability)
		}
	}
	sort.Strings(report.Capabilities)

	report.UIDPlus, _ = uidplus.NewClient(imapClient).SupportUidPlus()
	report.Compress, _ = compress.NewClient(imapClient).SupportCompress(compress.Deflate)
	return report
}
