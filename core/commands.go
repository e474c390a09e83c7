package core

// Argument is a single command argument used for help output.
type Argument struct {
	Name     string
	Optional bool
}

// Command describes a server command. The CLI uses the table for help and
// tab completion.
type Command struct {
	Name      string
	Summary   string
	Group     string
	Arguments []Argument
}

// String returns the usage line for the command.
func (c Command) String() string {
	s := c.Name
	for _, arg := range c.Arguments {
		if arg.Optional {
			s += " [" + arg.Name + "]"
		} else {
			s += " " + arg.Name
		}
	}
	return s
}

// Commands is the table of supported commands keyed by name.
var Commands = map[string]Command{
	"SEGMENT": {
		Name:    "SEGMENT",
		Summary: "Cut a line at every crossing with an area",
		Group:   "segment",
		Arguments: []Argument{
			{Name: "line"},
			{Name: "OBJECT geojson|BOUNDS minlat minlon maxlat maxlon|HASH geohash|CIRCLE lat lon meters"},
			{Name: "BUFFER meters", Optional: true},
			{Name: "ORDERED", Optional: true},
			{Name: "NODEGENERATE", Optional: true},
		},
	},
	"PING": {
		Name:      "PING",
		Summary:   "Ping the server",
		Group:     "connection",
		Arguments: []Argument{{Name: "message", Optional: true}},
	},
	"ECHO": {
		Name:      "ECHO",
		Summary:   "Echo the given string",
		Group:     "connection",
		Arguments: []Argument{{Name: "message"}},
	},
	"AUTH": {
		Name:      "AUTH",
		Summary:   "Authenticate to the server",
		Group:     "connection",
		Arguments: []Argument{{Name: "password"}},
	},
	"OUTPUT": {
		Name:      "OUTPUT",
		Summary:   "Gets or sets the output format for the current connection",
		Group:     "connection",
		Arguments: []Argument{{Name: "json|resp", Optional: true}},
	},
	"QUIT": {
		Name:    "QUIT",
		Summary: "Close the connection",
		Group:   "connection",
	},
	"CLIENT": {
		Name:      "CLIENT",
		Summary:   "List the connected clients",
		Group:     "server",
		Arguments: []Argument{{Name: "LIST"}},
	},
	"CONFIG": {
		Name:    "CONFIG",
		Summary: "Get, set, or rewrite server configuration",
		Group:   "server",
		Arguments: []Argument{
			{Name: "GET pattern|SET name value|REWRITE"},
		},
	},
	"STATS": {
		Name:    "STATS",
		Summary: "Show server statistics",
		Group:   "server",
	},
}
