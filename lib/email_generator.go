package lib

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/emersion/go-imap"
)

const charset = "abcdefghijklmnopqrstuvwxyz " +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 " +
	",./;'\\ \" []{}<>?:|!@£$%^&*()_+-= " +
	"\r\n\r\n\r\n "

const template = "From: %s\r\n" +
	"To: %s\r\n" +
	"Subject: A little message, just for you\r\n" +
	"Date: Wed, 11 May 2016 14:31:59 +0000\r\n" +
	"Message-ID: <%d@localhost/>\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n%s"

const templateNoID = "From: %s\r\n" +
	"To: %s\r\n" +
	"Subject: No identifier on this one\r\n" +
	"Date: Wed, 11 May 2016 14:31:59 +0000\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n%s"

var seededRand *rand.Rand = rand.New(
	rand.NewSource(time.Now().UnixMilli()))

var possibleFlags = []string{
	imap.SeenFlag,
	imap.AnsweredFlag,
	imap.FlaggedFlag,
	imap.DraftFlag,
	imap.RecentFlag,
}

func stringWithCharset(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[seededRand.Intn(len(charset))]
	}
	return string(b)
}

func randomLength(minSize, maxSize int) int {
	if maxSize <= minSize {
		return minSize
	}
	return minSize + seededRand.Intn(maxSize-minSize)
}

// GenerateEmail returns a random email with a Message-ID built from id
func GenerateEmail(from, to string, id uint32, minSize, maxSize int) []byte {
	msg := fmt.Sprintf(template, from, to, id, stringWithCharset(randomLength(minSize, maxSize), charset))
	return []byte(msg)
}

// GenerateEmailWithoutID returns a random email with no Message-ID header
func GenerateEmailWithoutID(from, to string, minSize, maxSize int) []byte {
	msg := fmt.Sprintf(templateNoID, from, to, stringWithCharset(randomLength(minSize, maxSize), charset))
	return []byte(msg)
}

// GenerateFlags returns a random set of less than max flags
func GenerateFlags(max int) []string {
	if max > len(possibleFlags)+1 {
		max = len(possibleFlags) + 1
	}
	count := seededRand.Intn(max)
	flags := make([]string, 0, count)
	for _, index := range seededRand.Perm(len(possibleFlags))[:count] {
		flags = append(flags, possibleFlags[index])
	}
	return flags
}
