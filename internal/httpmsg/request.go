// Package httpmsg extracts the HTTP/1.1 start-line, header map, and body
// from a byte buffer assumed to hold one complete message.
package httpmsg

import (
	"bytes"
	"strings"

	"github.com/ivanlilla/webserv/internal/cfgerr"
)

// Request is the result of parsing one HTTP/1.1 message.
type Request struct {
	Method  string
	Target  string
	Version string
	Headers map[string]string
	Body    []byte
}

var (
	crlf     = []byte("\r\n")
	crlfcrlf = []byte("\r\n\r\n")
)

// Parse extracts the start-line, headers, and body from data.
func Parse(data []byte) (*Request, error) {
	firstLineEnd := bytes.Index(data, crlf)
	if firstLineEnd < 0 {
		return nil, cfgerr.NewRequestError("Headers do not exist")
	}

	startLine := string(data[:firstLineEnd])
	parts := strings.Split(startLine, " ")
	if len(parts) != 3 {
		return nil, cfgerr.NewRequestError("malformed request line %q", startLine)
	}

	sepIdx := bytes.Index(data, crlfcrlf)
	if sepIdx < 0 {
		return nil, cfgerr.NewRequestError("missing header/body separator")
	}

	var headerBlock []byte
	if sepIdx > firstLineEnd {
		headerBlock = data[firstLineEnd+len(crlf) : sepIdx]
	}
	body := data[sepIdx+len(crlfcrlf):]

	headers := parseHeaders(headerBlock)

	return &Request{
		Method:  parts[0],
		Target:  parts[1],
		Version: parts[2],
		Headers: headers,
		Body:    body,
	}, nil
}

func parseHeaders(block []byte) map[string]string {
	headers := make(map[string]string)
	if len(block) == 0 {
		return headers
	}
	for _, line := range strings.Split(string(block), "\r\n") {
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		headers[name] = value
	}
	return headers
}
