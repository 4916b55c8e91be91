// Package response turns a parsed request plus the virtual servers bound
// to the socket it arrived on into a byte sequence ready to write back to
// the client.
package response

import (
	"fmt"

	"github.com/ivanlilla/webserv/internal/config"
	"github.com/ivanlilla/webserv/internal/httpmsg"
)

// Pipeline produces a complete HTTP response for one request.
type Pipeline interface {
	Handle(req *httpmsg.Request, servers []*config.Server) ([]byte, error)
}

// StubPipeline answers every request with a fixed 501, leaving routing,
// static serving, and CGI dispatch for a later iteration.
type StubPipeline struct{}

func (StubPipeline) Handle(req *httpmsg.Request, servers []*config.Server) ([]byte, error) {
	body := fmt.Sprintf("%s %s not implemented\n", req.Method, req.Target)
	resp := "HTTP/1.1 501 Not Implemented\r\n" +
		fmt.Sprintf("Content-Length: %d\r\n", len(body)) +
		"Connection: close\r\n\r\n" +
		body
	return []byte(resp), nil
}
