// Package tcpserver accepts client connections and runs the request loop
// of each one on its own goroutine.
package tcpserver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/protocol"
	"github.com/Domenick1991/flightbooking/internal/session"
	"github.com/hashicorp/go-hclog"
)

var errLineTooLong = errors.New("line too long")

type Dispatcher interface {
	Dispatch(ctx context.Context, sess *session.Session, cmd protocol.Command) protocol.Result
}

type Server struct {
	cfg        config.ServerConfig
	dispatcher Dispatcher
	log        hclog.Logger

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

func New(cfg config.ServerConfig, dispatcher Dispatcher, log hclog.Logger) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		log:        log,
		conns:      make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. On return the
// listener and every open connection are closed and all connection
// goroutines have finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info("listening", "address", ln.Addr().String())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		ln.Close()
		s.closeAll()
	}()

	var tempDelay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay = min(2*tempDelay, time.Second)
				}
				s.log.Warn("accept", "error", err, "retry_in", tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			s.closeAll()
			s.wg.Wait()
			return fmt.Errorf("accept: %w", err)
		}
		tempDelay = 0

		if !s.track(conn) {
			conn.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handle(ctx, conn)
		}()
	}

	s.wg.Wait()
	s.log.Info("server stopped")
	return nil
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	sess := session.New(conn.RemoteAddr().String())
	log := s.log.With("session", sess.ID, "remote", sess.RemoteAddr)
	log.Debug("connection opened")

	r := bufio.NewReader(conn)
	for {
		if idle := s.cfg.IdleTimeout(); idle > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(idle)); err != nil {
				log.Debug("set read deadline", "error", err)
				return
			}
		}

		var res protocol.Result
		line, err := readLine(r, s.cfg.MaxLineBytes)
		switch {
		case errors.Is(err, errLineTooLong):
			log.Debug("request too long", "limit", s.cfg.MaxLineBytes)
			res = protocol.Error("Request too long")
		case errors.Is(err, io.EOF):
			log.Debug("connection closed by peer")
			return
		case err != nil:
			log.Debug("connection closed", "error", err)
			return
		default:
			res = s.serveLine(ctx, sess, line, log)
		}

		if _, err := conn.Write(protocol.Encode(res)); err != nil {
			log.Debug("write response", "error", err)
			return
		}
	}
}

// readLine returns the next line without its "\n" or "\r\n" terminator. A
// line longer than limit is read through its terminator and dropped, so the
// connection stays in step with the client, and errLineTooLong is returned.
// An unterminated last line before EOF is returned as a line.
func readLine(r *bufio.Reader, limit int) (string, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			// Leave room for a "\r\n" terminator still in the buffer.
			if len(line) > limit+2 {
				tooLong, line = true, nil
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err == nil:
		case errors.Is(err, io.EOF) && (tooLong || len(line) > 0):
		default:
			return "", err
		}

		line = bytes.TrimSuffix(line, []byte("\n"))
		line = bytes.TrimSuffix(line, []byte("\r"))
		if tooLong || len(line) > limit {
			return "", errLineTooLong
		}
		return string(line), nil
	}
}

func (s *Server) serveLine(ctx context.Context, sess *session.Session, line string, log hclog.Logger) protocol.Result {
	cmd, err := protocol.Decode(line)
	if err != nil {
		return protocol.Error("Invalid request")
	}

	start := time.Now()
	res := s.dispatcher.Dispatch(ctx, sess, cmd)
	log.Debug("request", "command", cmd.Name, "ok", res.OK(), "took", time.Since(start))
	return res
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
}

// ActiveConnections is the number of connections currently being served.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
