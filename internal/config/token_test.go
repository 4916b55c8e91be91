package config_test

import (
	"testing"

	"github.com/ivanlilla/webserv/internal/config"
	"gotest.tools/v3/assert"
)

func TestTokenizeStripsCommentsAndWhitespace(t *testing.T) {
	t.Parallel()

	raw := "server {   # this is a comment\n  listen   127.0.0.1:8080;\n  root /tmp; # trailing\n}\n"
	tokens := config.Tokenize(raw)

	assert.DeepEqual(t, tokens, []string{
		"server", "{", "listen", "127.0.0.1:8080;", "root", "/tmp;", "}",
	})
}

func TestTokenizeRoundTrip(t *testing.T) {
	t.Parallel()

	raw := "server { listen 127.0.0.1:8080; root /tmp; index i.html; }"
	tokens := config.Tokenize(raw)
	normalized := config.Normalize(tokens)
	again := config.Tokenize(normalized)

	assert.DeepEqual(t, tokens, again)
}

func TestCheckTerminator(t *testing.T) {
	t.Parallel()

	assert.NilError(t, config.CheckTerminator("80;"))
	assert.ErrorContains(t, config.CheckTerminator("80"), "Missing ';'")
	assert.ErrorContains(t, config.CheckTerminator("80;;"), "Missing ';'")
	assert.ErrorContains(t, config.CheckTerminator(""), "Missing ';'")
}
