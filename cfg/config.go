// Package cfg loads the accounts from the configuration file and the environment
package cfg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrAccountNotFound = errors.New("account not found in configuration")

type Config struct {
	Accounts map[string]Account `yaml:"accounts"`
}

// Account is the connection to a server and the local mail directory
type Account struct {
	// User, user@host or user@host:port
	User     string `yaml:"user"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      *bool  `yaml:"tls"`
	Password string `yaml:"password"`
	// AuthType is "login", "plain" or "md5"
	AuthType            string        `yaml:"auth"`
	SkipTLSVerification bool          `yaml:"skipTLSVerification"`
	Timeout             time.Duration `yaml:"timeout"`
	MailDir             string        `yaml:"maildir"`
	Prefix              string        `yaml:"prefix"`
	Wait                time.Duration `yaml:"wait"`
	// Limit of the local disk bandwidth in bytes per second
	Rate    int      `yaml:"rate"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

func newConfig() *Config {
	return &Config{
		Accounts: make(map[string]Account),
	}
}

// LoadFromFile loads the configuration from the file.
// A missing file gives an empty configuration.
func LoadFromFile(fileName string) (*Config, error) {
	file, err := os.Open(fileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newConfig(), nil
		}
		return nil, err
	}
	defer file.Close()
	return Load(file)
}

// Load the configuration from a reader
func Load(reader io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	config := newConfig()
	err := decoder.Decode(config)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if config.Accounts == nil {
		config.Accounts = make(map[string]Account)
	}
	return config, nil
}

// Account returns the account by name. An empty name returns an empty account,
// or the only account of the configuration.
func (c *Config) Account(name string) (Account, error) {
	if name == "" {
		if len(c.Accounts) == 1 {
			for _, account := range c.Accounts {
				return account, nil
			}
		}
		return Account{}, nil
	}
	account, found := c.Accounts[name]
	if !found {
		return Account{}, fmt.Errorf("%w: %q", ErrAccountNotFound, name)
	}
	return account, nil
}

// Names of the accounts, sorted
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Accounts))
	for name := range c.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
