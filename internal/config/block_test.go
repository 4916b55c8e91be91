package config_test

import (
	"testing"

	"github.com/ivanlilla/webserv/internal/config"
	"gotest.tools/v3/assert"
)

func TestSplitServerBlocksSingle(t *testing.T) {
	t.Parallel()

	tokens := config.Tokenize("server { listen 127.0.0.1:8080; root /tmp; }")
	blocks, err := config.SplitServerBlocks(tokens)
	assert.NilError(t, err)
	assert.Equal(t, len(blocks), 1)
	assert.DeepEqual(t, blocks[0], []string{"listen", "127.0.0.1:8080;", "root", "/tmp;"})
}

func TestSplitServerBlocksMultipleAndNested(t *testing.T) {
	t.Parallel()

	tokens := config.Tokenize(`
		server {
			listen 127.0.0.1:8080;
			location /a {
				root /tmp;
			}
		}
		server {
			listen 127.0.0.1:8081;
		}
	`)
	blocks, err := config.SplitServerBlocks(tokens)
	assert.NilError(t, err)
	assert.Equal(t, len(blocks), 2)
	assert.DeepEqual(t, blocks[0], []string{
		"listen", "127.0.0.1:8080;", "location", "/a", "{", "root", "/tmp;", "}",
	})
	assert.DeepEqual(t, blocks[1], []string{"listen", "127.0.0.1:8081;"})
}

func TestSplitServerBlocksNoServerKeyword(t *testing.T) {
	t.Parallel()

	tokens := config.Tokenize("  # just a comment\n  \n")
	_, err := config.SplitServerBlocks(tokens)
	assert.ErrorContains(t, err, "No server block found")
}

func TestSplitServerBlocksMissingBrace(t *testing.T) {
	t.Parallel()

	tokens := config.Tokenize("server listen 80;")
	_, err := config.SplitServerBlocks(tokens)
	assert.ErrorContains(t, err, "Missing '{'")
}

func TestSplitServerBlocksUnbalancedBraces(t *testing.T) {
	t.Parallel()

	tokens := config.Tokenize("server { listen 80;")
	_, err := config.SplitServerBlocks(tokens)
	assert.ErrorContains(t, err, "Unbalanced braces")
}
