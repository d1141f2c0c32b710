package relay

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCollector speaks the collector line protocol and records payloads.
type fakeCollector struct {
	ln net.Listener

	mu       sync.Mutex
	received []string
	script   func(conn net.Conn, rd *bufio.Reader)
}

func newFakeCollector(t *testing.T) *fakeCollector {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	c := &fakeCollector{ln: ln}
	c.script = c.standard
	go c.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return c
}

func (c *fakeCollector) addr() string { return c.ln.Addr().String() }

func (c *fakeCollector) serve() {
	for {
		conn, err := c.ln.Accept()
		if err != nil {
			return
		}
		go func() {
			defer conn.Close()
			c.script(conn, bufio.NewReader(conn))
		}()
	}
}

func (c *fakeCollector) standard(conn net.Conn, rd *bufio.Reader) {
	_, _ = conn.Write([]byte("HELLO\n"))
	line, err := rd.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "trigger" {
		return
	}
	_, _ = conn.Write([]byte("READY\n"))
	payload, err := rd.ReadString('\n')
	if err != nil {
		return
	}
	c.mu.Lock()
	c.received = append(c.received, strings.TrimRight(payload, "\n"))
	c.mu.Unlock()
	_, _ = conn.Write([]byte("OK\n"))
}

func (c *fakeCollector) payloads() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.received...)
}

func TestLineSender_Exchange(t *testing.T) {
	collector := newFakeCollector(t)
	sender := NewLineSender(collector.addr(), time.Second)

	resp, err := sender.Send(context.Background(), "{DataType:Device, }")
	require.NoError(t, err)
	assert.Equal(t, "OK", resp)
	assert.Equal(t, []string{"{DataType:Device, }"}, collector.payloads())
}

func TestLineSender_CollectorHangsUp(t *testing.T) {
	collector := newFakeCollector(t)
	collector.script = func(conn net.Conn, rd *bufio.Reader) {
		_, _ = conn.Write([]byte("HELLO\n"))
		_, _ = rd.ReadString('\n')
	}
	sender := NewLineSender(collector.addr(), time.Second)

	_, err := sender.Send(context.Background(), "payload")
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestLineSender_SilentCollectorTimesOut(t *testing.T) {
	collector := newFakeCollector(t)
	collector.script = func(_ net.Conn, rd *bufio.Reader) {
		_, _ = rd.ReadString('\n')
	}
	sender := NewLineSender(collector.addr(), 100*time.Millisecond)

	start := time.Now()
	_, err := sender.Send(context.Background(), "payload")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLineSender_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = NewLineSender(addr, time.Second).Send(context.Background(), "payload")
	assert.ErrorContains(t, err, "dial collector")
}
