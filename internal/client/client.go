// Package client is a minimal peer for the booking line protocol.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/flightbooking/internal/protocol"
)

// Client sends one request at a time over a single persistent connection.
type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Do sends cmd and returns the response line without its delimiter.
func (c *Client) Do(ctx context.Context, cmd protocol.Command) (string, error) {
	if cmd.Name == "" {
		return "", protocol.ErrEmptyRequest
	}
	return c.Send(ctx, cmd.Line())
}

// Send writes a raw request line. The context deadline, if any, bounds the
// whole round trip.
func (c *Client) Send(ctx context.Context, line string) (string, error) {
	if strings.ContainsAny(line, "\r\n") {
		return "", errors.New("request must be a single line")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	if _, err := c.conn.Write(append([]byte(line), protocol.Delimiter)); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}
	resp, err := c.reader.ReadString(protocol.Delimiter)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return strings.TrimRight(resp, "\r\n"), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// IsError reports whether resp is an error response.
func IsError(resp string) bool {
	return strings.HasPrefix(resp, "ERROR")
}

// SplitRecords splits a multi-record response such as GET_FLIGHTS.
func SplitRecords(resp string) []string {
	return strings.Split(resp, protocol.RecordSeparator)
}

// DialTimeout is a convenience for callers without a context.
func DialTimeout(addr string, timeout time.Duration) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Dial(ctx, addr)
}
