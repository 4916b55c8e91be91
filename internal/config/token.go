// Package config lexes, parses, and semantically validates the
// nginx-style directive language into an in-memory routing table of
// Server/Location values.
package config

import (
	"strings"

	"github.com/ivanlilla/webserv/internal/cfgerr"
)

// Tokenize strips comments, collapses whitespace, and splits raw config
// text into a flat token stream. A "#" starts a comment that runs to
// the next newline or EOF; braces are forced apart from neighboring
// text so they always surface as standalone tokens.
func Tokenize(raw string) []string {
	var b strings.Builder
	inComment := false
	for _, r := range raw {
		switch {
		case inComment:
			if r == '\n' {
				inComment = false
				b.WriteRune(' ')
			}
		case r == '#':
			inComment = true
		case r == '{' || r == '}':
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

// Normalize reconstructs the whitespace-normalized text for a token
// stream: a single space between every token. Re-tokenizing this text
// yields the same token sequence it came from.
func Normalize(tokens []string) string {
	return strings.Join(tokens, " ")
}

// CheckTerminator validates that tok ends with exactly one ';', not
// zero and not two stacked.
func CheckTerminator(tok string) error {
	if tok == "" || tok[len(tok)-1] != ';' {
		return cfgerr.NewParseError("Missing ';'")
	}
	if len(tok) >= 2 && tok[len(tok)-2] == ';' {
		return cfgerr.NewParseError("Missing ';'")
	}
	return nil
}
