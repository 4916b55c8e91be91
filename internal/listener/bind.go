// Package listener binds raw, non-blocking listening sockets for every
// (host, port) pair a configuration declares. It deliberately avoids
// net.Listener: the event loop needs the bare file descriptors to
// place directly into a select() readiness set.
package listener

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/ivanlilla/webserv/internal/cfgerr"
	"github.com/ivanlilla/webserv/internal/config"
)

const listenBacklog = 128

// Binding pairs one bound socket with every virtual server that shares it.
type Binding struct {
	FD      int
	Host    string
	Port    int
	Servers []*config.Server
}

// Table is the set of bound listening sockets for a configuration.
type Table struct {
	byEndpoint map[string]int
	byFD       map[int]*Binding
}

func endpointKey(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// Bind opens one non-blocking listening socket per distinct (host, port)
// pair declared across servers, attaching every server that shares an
// endpoint to the same Binding.
func Bind(servers []*config.Server) (*Table, error) {
	t := &Table{
		byEndpoint: make(map[string]int),
		byFD:       make(map[int]*Binding),
	}

	for _, srv := range servers {
		for _, l := range srv.EffectiveListeners() {
			key := endpointKey(l.Host, l.Port)
			if fd, ok := t.byEndpoint[key]; ok {
				b := t.byFD[fd]
				b.Servers = append(b.Servers, srv)
				continue
			}

			fd, err := bindSocket(l.Host, l.Port)
			if err != nil {
				t.Close()
				return nil, cfgerr.NewSystemError("bind", "%s: %v", key, err)
			}

			t.byEndpoint[key] = fd
			t.byFD[fd] = &Binding{
				FD:      fd,
				Host:    l.Host,
				Port:    l.Port,
				Servers: []*config.Server{srv},
			}
		}
	}

	return t, nil
}

func bindSocket(host string, port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		unix.Close(fd)
		return -1, fmt.Errorf("invalid host %q", host)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		unix.Close(fd)
		return -1, fmt.Errorf("non-IPv4 host %q", host)
	}

	addr := &unix.SockaddrInet4{Port: port}
	copy(addr.Addr[:], ip4)

	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind %s:%d: %w", host, port, err)
	}

	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("listen: %w", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("set nonblocking: %w", err)
	}

	return fd, nil
}

// FDs returns every bound listening file descriptor.
func (t *Table) FDs() []int {
	fds := make([]int, 0, len(t.byFD))
	for fd := range t.byFD {
		fds = append(fds, fd)
	}
	return fds
}

// Binding returns the binding owning fd, if any.
func (t *Table) Binding(fd int) (*Binding, bool) {
	b, ok := t.byFD[fd]
	return b, ok
}

// ServersForFD returns the virtual servers sharing the listening socket fd.
func (t *Table) ServersForFD(fd int) []*config.Server {
	b, ok := t.byFD[fd]
	if !ok {
		return nil
	}
	return b.Servers
}

// Close shuts down every bound socket.
func (t *Table) Close() {
	for fd := range t.byFD {
		unix.Close(fd)
	}
	t.byFD = make(map[int]*Binding)
	t.byEndpoint = make(map[string]int)
}
