package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/tidwall/resp"
	"github.com/ygmpkk/lineslice/core"
	"github.com/ygmpkk/lineslice/internal/server"
	"golang.org/x/term"
)

var (
	hostname string
	port     int
	jsonOut  bool
	raw      bool
	noprompt bool
	tty      bool
)

func version() string {
	if core.GitSHA == "" || core.GitSHA == "0000000" {
		return core.Version
	}
	return core.Version + " (git:" + core.GitSHA + ")"
}

func parseFlags(args []string) ([]string, error) {
	fs := flag.NewFlagSet("lineslice-cli", flag.ContinueOnError)
	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintf(w, "lineslice-cli %s\n\n", version())
		fmt.Fprintf(w, "Usage: lineslice-cli [OPTIONS] [cmd [arg [arg ...]]]\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&hostname, "h", "127.0.0.1", "Server hostname")
	fs.IntVar(&port, "p", 9861, "Server port")
	fs.BoolVar(&jsonOut, "json", false, "Use JSON output formatting")
	fs.BoolVar(&raw, "raw", false, "Print replies as received (default when STDOUT is not a tty)")
	fs.BoolVar(&noprompt, "noprompt", false, "Do not display a prompt")
	fs.BoolVar(&tty, "tty", false, "Force TTY")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, errors.New("invalid port " + strconv.Itoa(port))
	}
	return fs.Args(), nil
}

// session is a connection to the server that redials after the server
// closes it.
type session struct {
	addr   string
	conn   *server.RESPConn
	format formatter
}

func (s *session) dial() error {
	conn, err := server.DialTimeout(s.addr, 5*time.Second)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) {
			return fmt.Errorf("could not connect to lineslice at %s: Connection refused", s.addr)
		}
		return err
	}
	mode := "resp"
	if s.format.json {
		mode = "json"
	}
	if _, err := conn.Do("OUTPUT", mode); err != nil {
		conn.Close()
		return err
	}
	s.conn = conn
	return nil
}

func (s *session) do(args []string) (resp.Value, error) {
	vals := make([]interface{}, len(args)-1)
	for i, arg := range args[1:] {
		vals[i] = arg
	}
	for attempt := 0; ; attempt++ {
		if s.conn == nil {
			if err := s.dial(); err != nil {
				return resp.Value{}, err
			}
		}
		v, err := s.conn.Do(args[0], vals...)
		if err == io.EOF && attempt == 0 {
			s.conn = nil
			continue
		}
		return v, err
	}
}

// run sends one command and prints the reply.
func (s *session) run(args []string) error {
	v, err := s.do(args)
	if err != nil {
		return err
	}
	command := strings.ToLower(args[0])
	text, failed := s.format.format(command, v)
	if command == "output" && len(args) == 2 && !failed {
		s.format.json = strings.EqualFold(args[1], "json")
	}
	if failed {
		fmt.Fprintln(os.Stderr, text)
		return nil
	}
	fmt.Fprintln(os.Stdout, text)
	return nil
}

func main() {
	args, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !raw && !tty {
		raw = !term.IsTerminal(int(os.Stdout.Fd()))
	}
	s := &session{
		addr: net.JoinHostPort(hostname, strconv.Itoa(port)),
		format: formatter{
			json:   jsonOut,
			raw:    raw,
			color:  !raw,
			pieces: !raw,
		},
	}
	if len(args) > 0 {
		if strings.EqualFold(args[0], "help") {
			help(strings.Join(args[1:], " "))
			return
		}
		if err := s.run(args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := s.dial(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	repl(s)
}

func repl(s *session) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	var historyFile string
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".lineslice_history")
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	for {
		prompt := s.addr + "> "
		if raw || noprompt {
			prompt = ""
		} else if s.conn == nil {
			prompt = "not connected> "
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if err != liner.ErrPromptAborted && err != io.EOF {
				fmt.Fprintln(os.Stderr, "Error reading line:", err)
			}
			return
		}
		if !strings.HasPrefix(input, " ") && strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		args, err := splitArgs(input)
		if err != nil {
			fmt.Fprintln(os.Stderr, "(error) "+err.Error())
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch strings.ToLower(args[0]) {
		case "quit", "exit":
			return
		case "help":
			help(strings.Join(args[1:], " "))
			continue
		}
		if err := s.run(args); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func commandNames() []string {
	names := make([]string, 0, len(core.Commands))
	for name := range core.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// complete offers command names, and help topics after "help ".
func complete(line string) []string {
	prefix := ""
	word := line
	if strings.HasPrefix(strings.ToLower(line), "help ") {
		prefix = line[:5]
		word = strings.TrimLeft(line[5:], " ")
	}
	var out []string
	for _, name := range commandNames() {
		if strings.HasPrefix(name, strings.ToUpper(word)) {
			out = append(out, prefix+name)
		}
	}
	return out
}

func help(topic string) {
	if topic == "" {
		fmt.Fprintf(os.Stderr, "lineslice-cli %s\n", version())
		fmt.Fprintln(os.Stderr, `Type:   "help <command>" for help on <command>`)
		fmt.Fprintln(os.Stderr, `        "quit" to exit`)
		fmt.Fprintln(os.Stderr, "Commands: "+strings.Join(commandNames(), ", "))
		return
	}
	command, ok := core.Commands[strings.ToUpper(topic)]
	if !ok {
		fmt.Fprintf(os.Stderr, "(error) unknown command '%s'\n", topic)
		return
	}
	fmt.Fprintf(os.Stderr, "  %s\n  summary: %s\n  group: %s\n\n",
		command, command.Summary, command.Group)
}
