package cmd

import (
	"strings"

	"github.com/creativeprojects/imapmirror/cfg"
	"github.com/creativeprojects/imapmirror/storage/remote"
	"github.com/creativeprojects/imapmirror/term"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe user@domain",
	Short: "Find the server name and security accepting connections for the domain",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  runProbe,
}

var probeAll bool

func init() {
	probeCmd.Flags().BoolVar(&probeAll, "all", false, "try all the connections instead of stopping at the first success")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	_, domain, port, err := cfg.ParseEmail(args[0])
	if err != nil {
		return &usageError{message: err.Error()}
	}
	exactHost := false
	if global.host != "" {
		domain = global.host
		exactHost = true
	}
	if domain == "" {
		return usageErrorf("missing domain in %q", args[0])
	}
	if global.port != 0 {
		port = global.port
	}
	timeout := seconds(global.timeout)
	if timeout <= 0 {
		timeout = remote.DefaultProbeTimeout
	}

	targets := remote.Targets(domain, port, global.tls, exactHost)
	term.Infof("Probing %d host/security connections, this can take up to %.0f seconds",
		len(targets), timeout.Seconds()*float64(len(targets)))

	reports := remote.Probe(cmd.Context(), targets, timeout, probeAll, engineLogger())
	if remote.FirstSuccess(reports) == nil {
		return errProbeFailed
	}
	for _, report := range reports {
		if report.Err != nil {
			term.Debugf("%s (tls=%v): %v", report.Address(), report.TLS, report.Err)
			continue
		}
		term.Printf("Success: host = %s, port = %d, ssl/tls = %s\n", report.Host, report.Port, yesNo(report.TLS))
		if term.Enabled(term.LevelDebug) {
			term.Printf("Capabilities: %s\n", strings.Join(report.Capabilities, " "))
			term.Printf("UIDPLUS: %s, COMPRESS=DEFLATE: %s\n", yesNo(report.UIDPlus), yesNo(report.Compress))
		}
	}
	return nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
