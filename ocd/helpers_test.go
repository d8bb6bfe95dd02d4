package ocd

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubReply describes how the stub server answers one command.
type stubReply struct {
	// payload is the response text; the terminator is appended on send.
	payload string
	// raw, when non-nil, is sent verbatim instead of payload.
	raw []byte
	// delay is slept before replying.
	delay time.Duration
	// drop suppresses the reply entirely.
	drop bool
	// closeConn closes the connection instead of replying.
	closeConn bool
}

// stubServer is a loopback endpoint that speaks the 0x1a framing of
// OpenOCD's Tcl RPC service with scripted replies.
type stubServer struct {
	t  *testing.T
	ln net.Listener

	mu      sync.Mutex
	handler func(cmd string) stubReply
	conns   []net.Conn
	cmds    []string

	wg sync.WaitGroup
}

func newStubServer(t *testing.T, handler func(cmd string) stubReply) *stubServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &stubServer{t: t, ln: ln, handler: handler}

	s.wg.Add(1)
	go s.acceptLoop()

	t.Cleanup(s.close)

	return s
}

// echoHandler replies to every command with the command text itself.
func echoHandler(cmd string) stubReply {
	return stubReply{payload: cmd}
}

func (s *stubServer) addr() (string, int) {
	host, portStr, err := net.SplitHostPort(s.ln.Addr().String())
	require.NoError(s.t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(s.t, err)

	return host, port
}

func (s *stubServer) setHandler(handler func(cmd string) stubReply) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handler = handler
}

func (s *stubServer) currentHandler() func(cmd string) stubReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.handler
}

// receivedCmds returns all commands received so far, in arrival order.
func (s *stubServer) receivedCmds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmds := make([]string, len(s.cmds))
	copy(cmds, s.cmds)

	return cmds
}

func (s *stubServer) lastCmd() string {
	cmds := s.receivedCmds()
	require.NotEmpty(s.t, cmds)

	return cmds[len(cmds)-1]
}

// injectBytes writes bytes to the most recent connection outside of any
// command exchange.
func (s *stubServer) injectBytes(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	require.NotEmpty(s.t, s.conns)
	_, err := s.conns[len(s.conns)-1].Write(data)
	require.NoError(s.t, err)
}

func (s *stubServer) close() {
	_ = s.ln.Close()

	s.mu.Lock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *stubServer) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *stubServer) serve(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		data, err := reader.ReadBytes(terminator)
		if err != nil {
			return
		}
		cmd := string(data[:len(data)-1])

		s.mu.Lock()
		s.cmds = append(s.cmds, cmd)
		s.mu.Unlock()

		reply := s.currentHandler()(cmd)

		if reply.delay > 0 {
			time.Sleep(reply.delay)
		}

		switch {
		case reply.closeConn:
			return
		case reply.drop:
			continue
		case reply.raw != nil:
			if _, err := conn.Write(reply.raw); err != nil {
				return
			}
		default:
			frame := append([]byte(reply.payload), terminator)
			if _, err := conn.Write(frame); err != nil {
				return
			}
		}
	}
}

// newTestClient connects a client to the stub server and registers its
// teardown.
func newTestClient(t *testing.T, s *stubServer, opts ...ConnOption) *Client {
	t.Helper()

	host, port := s.addr()
	cfg, err := NewConnectionConfig(host, port, opts...)
	require.NoError(t, err)

	c, err := Dial(cfg)
	require.NoError(t, err)

	t.Cleanup(c.Disconnect)

	return c
}

// innerCmd strips the catch wrapping from a transmitted command, so that
// handlers can dispatch on the command the caller actually issued. It runs
// on the server goroutine, so instead of failing the test directly it
// reports an unexpected wrapping via ok=false.
func innerCmd(fullCmd string) (string, bool) {
	const prefix = "set CMD_RETCODE [ catch { "
	const suffix = ` } CMD_OUTPUT ] ; return "$CMD_RETCODE $CMD_OUTPUT" ; `

	if !strings.HasPrefix(fullCmd, prefix) || !strings.HasSuffix(fullCmd, suffix) {
		return "", false
	}

	return strings.TrimSuffix(strings.TrimPrefix(fullCmd, prefix), suffix), true
}

// fakeOcd builds a handler that emulates the wrapped command evaluation of
// OpenOCD: it answers with "<retcode> <out>" looked up by the inner
// command text and defaults to retcode 0 with empty output. A command
// whose wrapping is malformed gets a non-decodable reply, which surfaces
// in the test as an InvalidResponseError.
type fakeOcd struct {
	outputs  map[string]string
	retcodes map[string]int
}

func newFakeOcd() *fakeOcd {
	return &fakeOcd{
		outputs:  make(map[string]string),
		retcodes: make(map[string]int),
	}
}

func (f *fakeOcd) handler(fullCmd string) stubReply {
	cmd, ok := innerCmd(fullCmd)
	if !ok {
		return stubReply{payload: "unexpected command wrapping"}
	}

	payload := strconv.Itoa(f.retcodes[cmd]) + " " + f.outputs[cmd]

	return stubReply{payload: payload}
}
