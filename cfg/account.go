package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/joho/godotenv"
)

const (
	DefaultHost    = "localhost"
	DefaultPort    = 143
	DefaultTLSPort = 993
	// PasswordEnv is the environment variable holding the password
	PasswordEnv = "IMAPMIRROR_PASSWORD"
)

// ParseEmail extracts the user, host and port from user[@host[:port]].
// The host is after the last '@', so the user name can contain one.
func ParseEmail(address string) (user, host string, port int, err error) {
	index := strings.LastIndex(address, "@")
	if index < 0 {
		return address, "", 0, nil
	}
	user, host = address[:index], address[index+1:]
	if name, portValue, found := strings.Cut(host, ":"); found {
		host = name
		port, err = strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid port %q in %q", portValue, address)
		}
	}
	return user, host, port, nil
}

// Merge returns the account with the non-zero values of override taking precedence
func (a Account) Merge(override Account) Account {
	merged := a
	if override.User != "" {
		merged.User = override.User
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.TLS != nil {
		merged.TLS = override.TLS
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.AuthType != "" {
		merged.AuthType = override.AuthType
	}
	if override.SkipTLSVerification {
		merged.SkipTLSVerification = true
	}
	if override.Timeout != 0 {
		merged.Timeout = override.Timeout
	}
	if override.MailDir != "" {
		merged.MailDir = override.MailDir
	}
	if override.Prefix != "" {
		merged.Prefix = override.Prefix
	}
	if override.Wait != 0 {
		merged.Wait = override.Wait
	}
	if override.Rate != 0 {
		merged.Rate = override.Rate
	}
	merged.Include = append(append([]string{}, a.Include...), override.Include...)
	merged.Exclude = append(append([]string{}, a.Exclude...), override.Exclude...)
	return merged
}

// Resolve splits a user@host:port user name (the explicit host and port win)
// and sets the default host, port and security. Without port nor TLS setting the
// connection is plain on port 143; TLS defaults to port 993 and port 993 implies TLS.
func (a Account) Resolve() (Account, error) {
	resolved := a
	user, host, port, err := ParseEmail(a.User)
	if err != nil {
		return resolved, err
	}
	resolved.User = user
	if resolved.Host == "" {
		resolved.Host = host
	}
	if resolved.Port == 0 {
		resolved.Port = port
	}
	if resolved.Host == "" {
		resolved.Host = DefaultHost
	}
	useTLS := false
	switch {
	case resolved.Port == 0 && resolved.TLS == nil:
		resolved.Port = DefaultPort
	case resolved.Port == 0:
		useTLS = *resolved.TLS
		resolved.Port = DefaultPort
		if useTLS {
			resolved.Port = DefaultTLSPort
		}
	case resolved.TLS == nil:
		useTLS = resolved.Port == DefaultTLSPort
	default:
		useTLS = *resolved.TLS
	}
	resolved.TLS = &useTLS
	return resolved, nil
}

// UseTLS returns the TLS setting, false when not set
func (a Account) UseTLS() bool {
	return a.TLS != nil && *a.TLS
}

// Filter returns the mailbox filter of the account
func (a Account) Filter() lib.Filter {
	return lib.Filter{
		Include: a.Include,
		Exclude: a.Exclude,
	}
}

// LoadEnv loads the variables from the .env files into the environment.
// Missing files are ignored and existing variables are never overridden.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("cannot load %q: %w", file, err)
		}
	}
	return nil
}

// PasswordFromEnv returns the password from the environment, if any
func PasswordFromEnv() string {
	return os.Getenv(PasswordEnv)
}
