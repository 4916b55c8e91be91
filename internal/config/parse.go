package config

import (
	"os"

	"github.com/ivanlilla/webserv/internal/cfgerr"
)

// ParseFile reads path, compiles it into a validated list of Server
// values, and enforces the global (host, port, server_name) uniqueness
// invariant across them.
func ParseFile(path string) ([]*Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cfgerr.NewParseError("cannot read config file %q: %v", path, err)
	}
	return ParseString(string(data))
}

// ParseString compiles raw config text the same way ParseFile does,
// for tests and other callers that already hold the config text.
func ParseString(raw string) ([]*Server, error) {
	tokens := Tokenize(raw)
	if len(tokens) == 0 {
		return nil, cfgerr.NewParseError("No server block found")
	}

	blocks, err := SplitServerBlocks(tokens)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, cfgerr.NewParseError("cannot determine working directory: %v", err)
	}

	servers := make([]*Server, 0, len(blocks))
	for _, block := range blocks {
		srv, err := ParseServerBlock(block, cwd)
		if err != nil {
			return nil, err
		}
		if err := ValidateServer(srv); err != nil {
			return nil, err
		}
		servers = append(servers, srv)
	}

	if err := ValidateUniqueness(servers); err != nil {
		return nil, err
	}
	return servers, nil
}
