package lib

import (
	"crypto/sha256"
	"encoding/hex"
)

// AccountTag identifies an account (server + user) in the local history without storing the user name
func AccountTag(serverURL, username string) string {
	hasher := sha256.New()
	hasher.Write([]byte(username))
	hasher.Write([]byte(":"))
	hasher.Write([]byte(serverURL))
	hasher.Write([]byte("\n"))
	return hex.EncodeToString(hasher.Sum(nil))
}
