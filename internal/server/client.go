package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/redcon"
	"github.com/tidwall/resp"
)

// Client is an remote connection into to lineslice
type Client struct {
	id         int         // unique id
	remoteAddr string      // original remote address
	conn       redcon.Conn // underlying connection

	mu     sync.Mutex // guard
	authd  bool       // client has been authenticated
	output Type       // Null, JSON, or RESP
	name   string     // optional defined name
	opened time.Time  // when the client was created/opened
	last   time.Time  // last client request/response
}

func (client *Client) outputType() Type {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.output
}

func (client *Client) setOutputType(t Type) {
	client.mu.Lock()
	client.output = t
	client.mu.Unlock()
}

func (client *Client) authenticated() bool {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.authd
}

func (client *Client) setAuthenticated(authd bool) {
	client.mu.Lock()
	client.authd = authd
	client.mu.Unlock()
}

// clients returns the connected clients ordered by id.
func (s *Server) clients() []*Client {
	var list []*Client
	s.connsmu.RLock()
	s.conns.Scan(func(_ int, client *Client) bool {
		list = append(list, client)
		return true
	})
	s.connsmu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		return list[i].id < list[j].id
	})
	return list
}

func (s *Server) cmdClient(msg *Message, client *Client) (resp.Value, error) {
	start := time.Now()

	if len(msg.Args) == 1 {
		return NOMessage, errInvalidNumberOfArguments
	}
	switch strings.ToLower(msg.Args[1]) {
	default:
		return NOMessage, errors.New("Syntax error, try CLIENT " +
			"(LIST | GETNAME | SETNAME)")
	case "list":
		if len(msg.Args) != 2 {
			return NOMessage, errInvalidNumberOfArguments
		}
		now := time.Now()
		var buf []byte
		for _, client := range s.clients() {
			client.mu.Lock()
			buf = append(buf,
				fmt.Sprintf("id=%d addr=%s name=%s age=%d idle=%d\n",
					client.id,
					client.remoteAddr,
					client.name,
					now.Sub(client.opened)/time.Second,
					now.Sub(client.last)/time.Second,
				)...,
			)
			client.mu.Unlock()
		}
		switch msg.OutputType {
		case JSON:
			// Create a map of all key/value info fields
			var cmap []map[string]interface{}
			clients := strings.Split(string(buf), "\n")
			for _, client := range clients {
				client = strings.TrimSpace(client)
				m := make(map[string]interface{})
				var hasFields bool
				for _, kv := range strings.Split(client, " ") {
					kv = strings.TrimSpace(kv)
					if split := strings.SplitN(kv, "=", 2); len(split) == 2 {
						hasFields = true
						m[split[0]] = tryParseType(split[1])
					}
				}
				if hasFields {
					cmap = append(cmap, m)
				}
			}

			// Marshal the map and use the output in the JSON response
			data, err := json.Marshal(cmap)
			if err != nil {
				return NOMessage, err
			}
			return resp.StringValue(`{"ok":true,"list":` + string(data) +
				`,"elapsed":"` + time.Since(start).String() + "\"}"), nil
		default:
			return resp.BytesValue(buf), nil
		}
	case "getname":
		if len(msg.Args) != 2 {
			return NOMessage, errInvalidNumberOfArguments
		}
		client.mu.Lock()
		name := client.name
		client.mu.Unlock()
		switch msg.OutputType {
		case JSON:
			return resp.StringValue(`{"ok":true,"name":` +
				jsonString(name) +
				`,"elapsed":"` + time.Since(start).String() + "\"}"), nil
		default:
			return resp.StringValue(name), nil
		}
	case "setname":
		if len(msg.Args) != 3 {
			return NOMessage, errInvalidNumberOfArguments
		}
		name := msg.Args[2]
		for i := 0; i < len(name); i++ {
			if name[i] < '!' || name[i] > '~' {
				errstr := "Client names cannot contain spaces, newlines or special characters."
				return NOMessage, errors.New(errstr)
			}
		}
		client.mu.Lock()
		client.name = name
		client.mu.Unlock()
		return OKMessage(msg, start), nil
	}
}
