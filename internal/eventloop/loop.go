// Package eventloop runs the single-threaded, select()-based readiness
// loop that accepts connections on every bound listening socket and
// drives each request through a response.Pipeline.
package eventloop

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/ivanlilla/webserv/internal/applog"
	"github.com/ivanlilla/webserv/internal/cfgerr"
	"github.com/ivanlilla/webserv/internal/httpmsg"
	"github.com/ivanlilla/webserv/internal/listener"
	"github.com/ivanlilla/webserv/internal/response"
)

// readBufferSize is the maximum request size read per accept cycle.
const readBufferSize = 30_000

// tickSeconds bounds how long a single select() call blocks before the
// loop re-checks for a pending signal.
const tickSeconds = 1

// SignalExit reports that Run stopped because of a delivered signal,
// letting the caller choose an exit code.
type SignalExit struct {
	Signal os.Signal
}

func (e *SignalExit) Error() string {
	return "stopped by signal: " + e.Signal.String()
}

// Loop multiplexes readiness across every bound listening socket.
type Loop struct {
	table    *listener.Table
	pipeline response.Pipeline
	sigCh    chan os.Signal
}

// New builds a Loop over the given bindings and response pipeline.
func New(table *listener.Table, pipeline response.Pipeline) *Loop {
	return &Loop{table: table, pipeline: pipeline}
}

// Run blocks, servicing connections until SIGINT is delivered or an
// unrecoverable syscall failure occurs. SIGPIPE is ignored so a client
// that closes early cannot kill the process.
func (l *Loop) Run() error {
	l.sigCh = make(chan os.Signal, 1)
	signal.Notify(l.sigCh, syscall.SIGINT)
	signal.Ignore(syscall.SIGPIPE)
	defer signal.Stop(l.sigCh)

	for {
		select {
		case sig := <-l.sigCh:
			return &SignalExit{Signal: sig}
		default:
		}

		fds := l.table.FDs()
		if len(fds) == 0 {
			return cfgerr.NewSystemError("select", "no bound listeners")
		}

		var set unix.FdSet
		fdZero(&set)
		maxFD := 0
		for _, fd := range fds {
			fdSet(&set, fd)
			if fd > maxFD {
				maxFD = fd
			}
		}

		timeout := unix.Timeval{Sec: tickSeconds}
		n, err := unix.Select(maxFD+1, &set, nil, nil, &timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return cfgerr.NewSystemError("select", "%v", err)
		}
		if n == 0 {
			continue
		}

		for _, fd := range fds {
			if fdIsSet(&set, fd) {
				l.acceptOne(fd)
			}
		}
	}
}

func (l *Loop) acceptOne(listenFD int) {
	connFD, peer, err := unix.Accept(listenFD)
	if err != nil {
		if err != unix.EAGAIN {
			applog.L().Error().Err(err).Msg("accept failed")
		}
		return
	}
	defer unix.Close(connFD)

	addr := ""
	if in4, ok := peer.(*unix.SockaddrInet4); ok {
		addr = fmt.Sprintf("%s:%d", net.IP(in4.Addr[:]), in4.Port)
	}
	applog.L().Info().Int("fd", connFD).Str("addr", addr).Msg("connection accepted")

	buf := make([]byte, readBufferSize)
	n, err := unix.Read(connFD, buf)
	if err != nil || n <= 0 {
		return
	}

	req, err := httpmsg.Parse(buf[:n])
	if err != nil {
		applog.L().Warn().Err(err).Msg("request parse failed")
		return
	}

	servers := l.table.ServersForFD(listenFD)
	out, err := l.pipeline.Handle(req, servers)
	if err != nil {
		applog.L().Error().Err(err).Msg("pipeline failed")
		return
	}

	if _, err := unix.Write(connFD, out); err != nil {
		applog.L().Warn().Err(err).Msg("write failed")
	}
}

func fdZero(set *unix.FdSet) {
	for i := range set.Bits {
		set.Bits[i] = 0
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= int64(1) << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(int64(1)<<(uint(fd)%64)) != 0
}
