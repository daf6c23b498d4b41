package cmd

import (
	"time"

	"github.com/creativeprojects/imapmirror/cfg"
)

type GlobalFlags struct {
	configFile          string
	envFile             string
	account             string
	verbose             int
	quiet               bool
	longForm            bool
	dryRun              bool
	user                string
	host                string
	port                int
	tls                 bool
	skipTLSVerification bool
	authType            string
	timeout             float64
	wait                float64
	mailDir             string
	deleteFirst         bool
	force               bool
	prefix              string
	excludes            []string
	includeFiles        []string
	excludeFiles        []string
	password            string
	rate                int
	historyFile         string
}

var (
	global GlobalFlags
	config *cfg.Config
)

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}
