package relay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"
)

// triggerLine opens a submission on the collection endpoint.
const triggerLine = "trigger"

// ErrNoResponse means the collector closed the connection before answering.
var ErrNoResponse = errors.New("collector closed connection without response")

// LineSender delivers one payload per TCP connection using the collector's
// line protocol: read greeting, send "trigger", read acknowledgement, send
// payload, read response, close.
type LineSender struct {
	addr    string
	timeout time.Duration
	dialer  *net.Dialer
	logger  *slog.Logger
}

type SenderOption func(*LineSender)

func WithSenderLogger(logger *slog.Logger) SenderOption {
	return func(s *LineSender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLineSender creates a sender for the collector at addr (host:port).
// timeout bounds the whole exchange.
func NewLineSender(addr string, timeout time.Duration, opts ...SenderOption) *LineSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &LineSender{
		addr:    addr,
		timeout: timeout,
		dialer:  &net.Dialer{Timeout: timeout},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the collector address.
func (s *LineSender) Addr() string {
	return s.addr
}

// Send runs one exchange and returns the collector's final line.
func (s *LineSender) Send(ctx context.Context, payload string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := s.dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("dial collector: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return "", fmt.Errorf("set deadline: %w", err)
		}
	}

	rd := bufio.NewReader(conn)
	greeting, err := readLine(rd)
	if err != nil {
		return "", fmt.Errorf("read greeting: %w", err)
	}
	s.logger.DebugContext(ctx, "collector greeting", "line", greeting)

	if err := writeLine(conn, triggerLine); err != nil {
		return "", fmt.Errorf("write trigger: %w", err)
	}
	ack, err := readLine(rd)
	if err != nil {
		return "", fmt.Errorf("read trigger ack: %w", err)
	}
	s.logger.DebugContext(ctx, "collector acknowledged trigger", "line", ack)

	if err := writeLine(conn, payload); err != nil {
		return "", fmt.Errorf("write payload: %w", err)
	}
	resp, err := readLine(rd)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}

func writeLine(w io.Writer, line string) error {
	_, err := io.WriteString(w, line+"\n")
	return err
}

func readLine(rd *bufio.Reader) (string, error) {
	line, err := rd.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrNoResponse
			}
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
