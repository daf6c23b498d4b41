package remote

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/creativeprojects/imapmirror/lib"
	"github.com/creativeprojects/imapmirror/parser"
	"github.com/emersion/go-sasl"
)

// Authentication types
const (
	AuthLogin = "login"
	AuthPlain = "plain"
	AuthMD5   = "md5"
)

// Login authenticates the user. An empty authType picks the first AUTH= capability of the server.
func (i *Imap) Login(username, password, authType string) error {
	if username == "" {
		return lib.ErrMissingCredentials
	}
	if authType == "" {
		authType = i.defaultAuthType()
	}
	i.log.Printf("Login user %s (%s)", username, authType)

	var err error
	switch strings.ToLower(authType) {
	case AuthLogin:
		command := "LOGIN " + parser.Quote(username) + " "
		_, err = i.executeMasked(command+parser.Quote(password), command+`"****"`, nil)
	case AuthPlain:
		err = i.authenticate(sasl.NewPlainClient("", username, password))
	case AuthMD5, "cram-md5":
		err = i.authenticate(NewCramMD5Client(username, password))
	default:
		return fmt.Errorf("%w: authentication type %q not known", lib.ErrCannotLogin, authType)
	}
	if err != nil {
		return fmt.Errorf("%w as %s: %w", lib.ErrCannotLogin, username, err)
	}
	i.log.Printf("Logged in as %s", username)
	return nil
}

func (i *Imap) defaultAuthType() string {
	if i.capabilities == nil {
		if _, err := i.Capabilities(); err != nil {
			i.log.Printf("cannot read capabilities: %v", err)
		}
	}
	for _, capability := range i.capabilities {
		mechanism, found := strings.CutPrefix(strings.ToUpper(capability), "AUTH=")
		if !found {
			continue
		}
		switch mechanism {
		case "PLAIN":
			return AuthPlain
		case "CRAM-MD5":
			return AuthMD5
		}
	}
	return AuthLogin
}

// authenticate runs the AUTHENTICATE command with the SASL client
func (i *Imap) authenticate(client sasl.Client) error {
	mechanism, initial, err := client.Start()
	if err != nil {
		return err
	}
	first := true
	_, err = i.executeMasked("AUTHENTICATE "+mechanism, "AUTHENTICATE "+mechanism, func(text string) ([]byte, error) {
		var response []byte
		if first && initial != nil {
			response = initial
		} else {
			challenge, err := base64.StdEncoding.DecodeString(text)
			if err != nil {
				return nil, fmt.Errorf("invalid challenge: %w", err)
			}
			response, err = client.Next(challenge)
			if err != nil {
				return nil, err
			}
		}
		first = false
		return []byte(base64.StdEncoding.EncodeToString(response)), nil
	})
	return err
}

type cramMD5Client struct {
	username string
	secret   []byte
}

// NewCramMD5Client implements the CRAM-MD5 mechanism (RFC 2195)
func NewCramMD5Client(username, password string) sasl.Client {
	return &cramMD5Client{
		username: username,
		secret:   []byte(password),
	}
}

func (c *cramMD5Client) Start() (string, []byte, error) {
	return "CRAM-MD5", nil, nil
}

func (c *cramMD5Client) Next(challenge []byte) ([]byte, error) {
	mac := hmac.New(md5.New, c.secret)
	mac.Write(challenge)
	return []byte(c.username + " " + hex.EncodeToString(mac.Sum(nil))), nil
}
