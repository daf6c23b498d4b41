// Package parser decodes the untyped replies of an IMAP server.
//
// Parse turns one response line made of bare atoms, quoted strings and
// parenthesised lists into a tree of Token. DecodeFetch turns the entries of a
// multi-message FETCH reply into one Record per message.
package parser
