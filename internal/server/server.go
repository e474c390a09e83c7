package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/btree"
	"github.com/tidwall/hashmap"
	"github.com/tidwall/limiter"
	"github.com/tidwall/redcon"
	"github.com/tidwall/resp"
	"github.com/ygmpkk/lineslice/core"
	"github.com/ygmpkk/lineslice/internal/log"
	"github.com/ygmpkk/lineslice/internal/segment"
	"go.uber.org/atomic"
)

// Options for Serve()
type Options struct {
	Host string
	Port int
	Dir  string

	// HTTPAddr is the address for the HTTP listener that serves /segment
	// and /metrics. Empty disables it.
	HTTPAddr string

	// Shutdown closes the server when it receives a value.
	Shutdown chan bool

	// Ready receives the bound address once the server accepts connections.
	Ready chan<- net.Addr
}

// Server is a lineslice server
type Server struct {
	host    string
	port    int
	dir     string
	started time.Time
	config  *Config
	segOpts segment.Options

	// atomics
	statsTotalConns    atomic.Int64 // counter for total connections
	statsTotalCommands atomic.Int64 // counter for total commands
	statsSegments      atomic.Int64 // SEGMENT calls that produced output
	statsPieces        atomic.Int64 // pieces produced by SEGMENT
	statsCacheHits     atomic.Int64
	statsCacheMisses   atomic.Int64
	statsRingsCompiled atomic.Int64
	statsRingsIndexed  atomic.Int64
	statsEdgesCompiled atomic.Int64
	nextClientID       atomic.Int64

	cmdmu     sync.Mutex
	cmdCounts btree.Map[string, int64] // per command, ordered by name

	connsmu sync.RWMutex
	conns   hashmap.Map[int, *Client]

	cache *segmenterCache

	limmu sync.RWMutex
	lim   *limiter.Limiter
	limn  int

	closemu sync.Mutex
	closed  bool
	rsrv    *redcon.Server
	hsrv    *http.Server
	addr    net.Addr
}

// Serve starts a new lineslice server and blocks until it is closed.
func Serve(opts Options) error {
	log.Infof("Server started, lineslice version %s, git %s",
		core.Version, core.GitSHA)

	if opts.Dir == "" {
		opts.Dir = "data"
	}
	s := &Server{
		host:    opts.Host,
		port:    opts.Port,
		dir:     opts.Dir,
		started: time.Now(),
		segOpts: *segment.DefaultOptions,
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	var err error
	s.config, err = loadConfig(filepath.Join(s.dir, "config"))
	if err != nil {
		return err
	}
	if lcfg := s.config.logConfig(); lcfg != "" {
		if err := log.Build(lcfg); err != nil {
			return err
		}
		log.LogJSON = true
	}

	// Allow for ring indexing options through environment variables:
	// LSIDXEDGES -- Min number of edges in a ring for indexing.
	if n, err := strconv.ParseUint(os.Getenv("LSIDXEDGES"), 10, 32); err == nil {
		s.segOpts.IndexEdges = int(n)
	}
	if core.IndexEdges > 0 {
		s.segOpts.IndexEdges = core.IndexEdges
	}
	log.Debugf("Ring indexing: RTree (%d edges)", s.segOpts.IndexEdges)

	s.cache = newSegmenterCache(s.config.cacheSize())
	s.applyConcurrency()

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.rsrv = redcon.NewServer(addr, s.handle, s.accept, s.closedConn)

	if opts.HTTPAddr != "" {
		if err := s.serveHTTP(opts.HTTPAddr); err != nil {
			return err
		}
	}
	if opts.Shutdown != nil {
		go func() {
			<-opts.Shutdown
			log.Infof("Shutdown requested")
			s.Close()
		}()
	}

	signal := make(chan error, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- s.rsrv.ListenServeAndSignal(signal)
	}()
	if err := <-signal; err != nil {
		s.Close()
		return err
	}
	s.closemu.Lock()
	s.addr = s.rsrv.Addr()
	s.closemu.Unlock()
	log.Infof("Ready to accept connections at %s", s.addr)
	if opts.Ready != nil {
		opts.Ready <- s.addr
	}
	err = <-errc
	s.closemu.Lock()
	closed := s.closed
	s.closemu.Unlock()
	if closed {
		return nil
	}
	return err
}

// Addr returns the bound address of the RESP listener.
func (s *Server) Addr() net.Addr {
	s.closemu.Lock()
	defer s.closemu.Unlock()
	return s.addr
}

// Close stops the listeners.
func (s *Server) Close() error {
	s.closemu.Lock()
	if s.closed {
		s.closemu.Unlock()
		return nil
	}
	s.closed = true
	s.closemu.Unlock()
	var err error
	if s.hsrv != nil {
		err = s.hsrv.Close()
	}
	if s.rsrv != nil {
		if rerr := s.rsrv.Close(); rerr != nil {
			err = rerr
		}
	}
	return err
}

func (s *Server) isProtected() bool {
	if core.ProtectedMode == "no" {
		// --protected-mode no
		return false
	}
	if s.host != "" && s.host != "127.0.0.1" &&
		s.host != "::1" && s.host != "localhost" {
		// -h address
		return false
	}
	return s.config.protectedMode() != "no" && s.config.requirePass() == ""
}

func isLoopback(remoteAddr string) bool {
	return strings.HasPrefix(remoteAddr, "127.0.0.1:") ||
		strings.HasPrefix(remoteAddr, "[::1]:")
}

func (s *Server) accept(conn redcon.Conn) bool {
	// check if the connection is protected
	if !isLoopback(conn.RemoteAddr()) && s.isProtected() {
		// This is a protected server. Only loopback is allowed.
		conn.NetConn().Write(deniedMessage)
		return false
	}
	client := &Client{
		id:         int(s.nextClientID.Inc()),
		remoteAddr: conn.RemoteAddr(),
		conn:       conn,
		output:     RESP,
		opened:     time.Now(),
	}
	client.last = client.opened
	conn.SetContext(client)

	s.connsmu.Lock()
	s.conns.Set(client.id, client)
	s.connsmu.Unlock()
	s.statsTotalConns.Inc()

	// set the client keep-alive, if needed
	if ka := s.config.keepAlive(); ka > 0 {
		if tcp, ok := conn.NetConn().(*net.TCPConn); ok {
			tcp.SetKeepAlive(true)
			tcp.SetKeepAlivePeriod(time.Duration(ka) * time.Second)
		}
	}
	log.Debugf("Opened connection: %s", client.remoteAddr)
	return true
}

func (s *Server) closedConn(conn redcon.Conn, err error) {
	client, ok := conn.Context().(*Client)
	if !ok {
		return
	}
	s.connsmu.Lock()
	s.conns.Delete(client.id)
	s.connsmu.Unlock()
	log.Debugf("Closed connection: %s", client.remoteAddr)
}

func (s *Server) handle(conn redcon.Conn, cmd redcon.Command) {
	client, ok := conn.Context().(*Client)
	if !ok || len(cmd.Args) == 0 {
		conn.Close()
		return
	}
	msg := &Message{
		Args:       make([]string, len(cmd.Args)),
		OutputType: client.outputType(),
	}
	for i, arg := range cmd.Args {
		msg.Args[i] = string(arg)
	}
	if msg.Command() == "quit" {
		if msg.OutputType == RESP {
			conn.WriteString("OK")
		}
		conn.Close()
		return
	}

	client.mu.Lock()
	client.last = time.Now()
	client.mu.Unlock()

	s.statsTotalCommands.Inc()
	conn.WriteRaw(s.handleInputCommand(client, msg))
	client.setOutputType(msg.OutputType)
}

// handleInputCommand runs the command and returns the raw RESP reply.
func (s *Server) handleInputCommand(client *Client, msg *Message) []byte {
	start := time.Now()
	name := strings.ToUpper(msg.Command())
	if _, ok := core.Commands[name]; ok {
		s.countCommand(name)
		defer func() {
			cmdDurations.With(prometheus.Labels{"cmd": msg.Command()}).
				Observe(time.Since(start).Seconds())
		}()
	}

	writeOutput := func(res string) []byte {
		if msg.OutputType == JSON {
			return redcon.AppendBulkString(nil, res)
		}
		return []byte(res)
	}
	serializeOutput := func(res resp.Value) []byte {
		switch msg.OutputType {
		case JSON:
			return writeOutput(res.String())
		default:
			b, _ := res.MarshalRESP()
			return b
		}
	}
	writeErr := func(errMsg string) []byte {
		switch msg.OutputType {
		case JSON:
			return writeOutput(`{"ok":false,"err":` + jsonString(errMsg) +
				`,"elapsed":"` + time.Since(start).String() + "\"}")
		default:
			if errMsg == errInvalidNumberOfArguments.Error() {
				return writeOutput("-ERR wrong number of arguments for '" +
					msg.Command() + "' command\r\n")
			}
			v, _ := resp.ErrorValue(errors.New("ERR " + errMsg)).MarshalRESP()
			return v
		}
	}

	// Ping. Just send back the response.
	if msg.Command() == "ping" || msg.Command() == "echo" {
		if msg.Command() == "echo" && len(msg.Args) != 2 {
			return writeErr(errInvalidNumberOfArguments.Error())
		}
		switch msg.OutputType {
		case JSON:
			if len(msg.Args) > 1 {
				return writeOutput(`{"ok":true,"` + msg.Command() + `":` +
					jsonString(msg.Args[1]) + `,"elapsed":"` +
					time.Since(start).String() + `"}`)
			}
			return writeOutput(`{"ok":true,"ping":"pong","elapsed":"` +
				time.Since(start).String() + `"}`)
		default:
			if len(msg.Args) > 1 {
				return redcon.AppendBulkString(nil, msg.Args[1])
			}
			return []byte("+PONG\r\n")
		}
	}

	if !client.authenticated() || msg.Command() == "auth" {
		if pass := s.config.requirePass(); pass != "" {
			// This better be an AUTH command
			if msg.Command() != "auth" {
				return writeErr("authentication required")
			}
			if len(msg.Args) != 2 {
				return writeErr(errInvalidNumberOfArguments.Error())
			}
			if pass != strings.TrimSpace(msg.Args[1]) {
				return writeErr("invalid password")
			}
			client.setAuthenticated(true)
			return serializeOutput(OKMessage(msg, start))
		} else if msg.Command() == "auth" {
			return writeErr("invalid password")
		}
	}

	res, err := s.command(msg, client)
	if err != nil {
		return writeErr(err.Error())
	}
	if res.Type() == resp.Error {
		return writeErr(res.String())
	}
	return serializeOutput(res)
}

func (s *Server) command(msg *Message, client *Client) (
	res resp.Value, err error,
) {
	switch msg.Command() {
	default:
		err = fmt.Errorf("unknown command '%s'", msg.Args[0])
	case "segment":
		res, err = s.cmdSegment(msg)
	case "segmentinfo":
		if !core.DevMode {
			err = fmt.Errorf("unknown command '%s'", msg.Args[0])
			return
		}
		res, err = s.cmdSegmentInfo(msg)
	case "output":
		res, err = s.cmdOutput(msg)
	case "stats":
		res, err = s.cmdStats(msg)
	case "client":
		res, err = s.cmdClient(msg, client)
	case "config get":
		res, err = s.cmdConfigGet(msg)
	case "config set":
		res, err = s.cmdConfigSet(msg)
	case "config rewrite":
		res, err = s.cmdConfigRewrite(msg)
	case "config":
		// These get rewritten into "config foo"
		err = fmt.Errorf("unknown command '%s'", msg.Args[0])
		if len(msg.Args) > 1 {
			msg.Args[1] = msg.Args[0] + " " + msg.Args[1]
			msg.Args = msg.Args[1:]
			msg._command = ""
			return s.command(msg, client)
		}
	}
	return
}

func (s *Server) countCommand(name string) {
	s.cmdmu.Lock()
	n, _ := s.cmdCounts.Get(name)
	s.cmdCounts.Set(name, n+1)
	s.cmdmu.Unlock()
}

func (s *Server) applyConcurrency() {
	n := s.config.maxConcurrency()
	s.limmu.Lock()
	if s.lim == nil || n != s.limn {
		s.lim = limiter.New(n)
		s.limn = n
	}
	s.limmu.Unlock()
}

func (s *Server) limiter() *limiter.Limiter {
	s.limmu.RLock()
	defer s.limmu.RUnlock()
	return s.lim
}

// This phrase is copied nearly verbatim from Redis.
var deniedMessage = []byte(strings.Replace(strings.TrimSpace(`
-DENIED lineslice is running in protected mode because protected mode is
enabled, no bind address was specified, no authentication password is
requested to clients. In this mode connections are only accepted from the
loopback interface. If you want to connect from external computers to
lineslice you may adopt one of the following solutions: 1) Just disable
protected mode sending the command 'CONFIG SET protected-mode no' from the
loopback interface by connecting to lineslice from the same host the server is
running, however MAKE SURE lineslice is not publicly accessible from internet
if you do so. Use CONFIG REWRITE to make this change permanent. 2) If you
started the server manually just for testing, restart it with the
'--protected-mode no' option. 3) Setup a bind address or an authentication
password. NOTE: You only need to do one of the above things in order for the
server to start accepting connections from the outside.
`), "\n", " ", -1) + "\r\n")

// OKMessage returns a default OK message in JSON or RESP.
func OKMessage(msg *Message, start time.Time) resp.Value {
	switch msg.OutputType {
	case JSON:
		return resp.StringValue(`{"ok":true,"elapsed":"` +
			time.Since(start).String() + "\"}")
	case RESP:
		return resp.SimpleStringValue("OK")
	}
	return resp.SimpleStringValue("")
}

// NOMessage is no message
var NOMessage = resp.SimpleStringValue("")

// Type is resp type
type Type byte

// Protocol Types
const (
	Null Type = iota
	RESP
	JSON
)

// Message is a resp message
type Message struct {
	_command   string
	Args       []string
	OutputType Type
}

// Command returns the first argument as a lowercase string
func (msg *Message) Command() string {
	if msg._command == "" {
		msg._command = strings.ToLower(msg.Args[0])
	}
	return msg._command
}
