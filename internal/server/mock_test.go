package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/tidwall/sjson"
	"github.com/ygmpkk/lineslice/core"
	"github.com/ygmpkk/lineslice/internal/log"
)

var errTimeout = errors.New("timeout")

type mockServer struct {
	closed   bool
	addr     string
	hport    int
	conn     redis.Conn
	dir      string
	shutdown chan bool
	done     chan error
}

type MockServerOptions struct {
	HTTP bool
}

var nextPort int32 = 20000

func getNextPort() int {
	// choose a valid port between 20000-50000
	for {
		port := int(atomic.AddInt32(&nextPort, 1))
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			ln.Close()
			return port
		}
	}
}

func mockOpenServer(t *testing.T, opts MockServerOptions) *mockServer {
	logOutput := io.Discard
	if os.Getenv("PRINTLOG") == "1" {
		logOutput = os.Stderr
		log.SetLevel(3)
	}
	log.SetOutput(logOutput)
	core.DevMode = true

	ready := make(chan net.Addr, 1)
	mc := &mockServer{
		dir:      t.TempDir(),
		shutdown: make(chan bool, 1),
		done:     make(chan error, 1),
	}
	sopts := Options{
		Host:     "127.0.0.1",
		Port:     0,
		Dir:      mc.dir,
		Shutdown: mc.shutdown,
		Ready:    ready,
	}
	if opts.HTTP {
		mc.hport = getNextPort()
		sopts.HTTPAddr = fmt.Sprintf("127.0.0.1:%d", mc.hport)
	}
	go func() {
		mc.done <- Serve(sopts)
	}()
	select {
	case addr := <-ready:
		mc.addr = addr.String()
	case err := <-mc.done:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal(errTimeout)
	}
	t.Cleanup(mc.Close)
	return mc
}

func (mc *mockServer) Close() {
	if mc == nil || mc.closed {
		return
	}
	mc.closed = true
	if mc.conn != nil {
		mc.conn.Close()
	}
	mc.shutdown <- true
	select {
	case <-mc.done:
	case <-time.After(5 * time.Second):
	}
}

func (mc *mockServer) Dial() (redis.Conn, error) {
	return redis.Dial("tcp", mc.addr)
}

func (mc *mockServer) ResetConn() {
	if mc.conn != nil {
		mc.conn.Close()
		mc.conn = nil
	}
}

// Do sends a command on the shared connection. Error replies are returned
// as the reply value.
func (mc *mockServer) Do(commandName string, args ...interface{}) (interface{}, error) {
	if mc.conn == nil {
		var err error
		mc.conn, err = mc.Dial()
		if err != nil {
			return nil, err
		}
	}
	if err := mc.conn.Send(commandName, args...); err != nil {
		return nil, err
	}
	if err := mc.conn.Flush(); err != nil {
		return nil, err
	}
	resp, err := mc.conn.Receive()
	if err != nil {
		if rerr, ok := err.(redis.Error); ok {
			return rerr, nil
		}
		return nil, err
	}
	return resp, nil
}

func normalize(v interface{}) interface{} {
	switch v := v.(type) {
	default:
		return v
	case []interface{}:
		for i := 0; i < len(v); i++ {
			v[i] = normalize(v[i])
		}
	case []uint8:
		return string(v)
	}
	return v
}

// DoExpect runs the command and compares the reply with expect. JSON replies
// have their elapsed member removed. A func(string) bool expectation is
// called with the reply.
func (mc *mockServer) DoExpect(expect interface{}, commandName string, args ...interface{}) error {
	resp, err := mc.Do(commandName, args...)
	if err != nil {
		return err
	}
	if b, ok := resp.([]byte); ok && len(b) > 1 && b[0] == '{' {
		b, err = sjson.DeleteBytes(b, "elapsed")
		if err == nil {
			resp = b
		}
	}
	resp = normalize(resp)
	if vv, ok := resp.([]interface{}); ok {
		var ss []string
		for _, v := range vv {
			if v == nil {
				ss = append(ss, "nil")
			} else {
				ss = append(ss, fmt.Sprintf("%v", v))
			}
		}
		resp = ss
	}
	if fn, ok := expect.(func(string) bool); ok {
		if !fn(fmt.Sprintf("%v", resp)) {
			return fmt.Errorf("unexpected for response '%v'", resp)
		}
	} else if fmt.Sprintf("%v", resp) != fmt.Sprintf("%v", expect) {
		return fmt.Errorf("expected '%v', got '%v'", expect, resp)
	}
	return nil
}

// DoBatch runs pairs of command and expectation.
func (mc *mockServer) DoBatch(commands [][]interface{}) error {
	for i := 0; i < len(commands); i += 2 {
		cmds := commands[i]
		if err := mc.DoExpect(commands[i+1][0], cmds[0].(string), cmds[1:]...); err != nil {
			return fmt.Errorf("batch[%d] %s: %v", i/2,
				strings.ToUpper(cmds[0].(string)), err)
		}
	}
	return nil
}

func runStep(t *testing.T, mc *mockServer, name string, step func(mc *mockServer) error) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		t.Helper()
		mc.ResetConn()
		if err := step(mc); err != nil {
			t.Fatal(err)
		}
	})
}
