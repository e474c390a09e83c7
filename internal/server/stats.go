package server

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/resp"
	"github.com/ygmpkk/lineslice/core"
)

// statsCollect returns the server counters keyed by name.
func (s *Server) statsCollect() map[string]interface{} {
	m := make(map[string]interface{})
	m["id"] = s.config.serverID()
	m["version"] = core.Version
	m["uptime"] = time.Since(s.started).Seconds()
	m["num_cpus"] = runtime.NumCPU()
	m["num_goroutines"] = runtime.NumGoroutine()

	s.connsmu.RLock()
	m["connected_clients"] = s.conns.Len()
	s.connsmu.RUnlock()
	m["total_connections_received"] = s.statsTotalConns.Load()
	m["total_commands_processed"] = s.statsTotalCommands.Load()
	m["segment_calls"] = s.statsSegments.Load()
	m["pieces_produced"] = s.statsPieces.Load()
	m["cache_hits"] = s.statsCacheHits.Load()
	m["cache_misses"] = s.statsCacheMisses.Load()
	m["cache_size"] = s.cache.len()
	m["rings_compiled"] = s.statsRingsCompiled.Load()
	m["rings_indexed"] = s.statsRingsIndexed.Load()
	m["edges_compiled"] = s.statsEdgesCompiled.Load()
	m["max_concurrency"] = s.config.maxConcurrency()
	m["index_edges"] = s.segOpts.IndexEdges
	return m
}

// commandCounts returns the per command counts, ordered by command name.
func (s *Server) commandCounts() (names []string, counts []int64) {
	s.cmdmu.Lock()
	s.cmdCounts.Scan(func(name string, count int64) bool {
		names = append(names, name)
		counts = append(counts, count)
		return true
	})
	s.cmdmu.Unlock()
	return names, counts
}

// STATS
func (s *Server) cmdStats(msg *Message) (res resp.Value, err error) {
	start := time.Now()
	if len(msg.Args) != 1 {
		return NOMessage, errInvalidNumberOfArguments
	}
	m := s.statsCollect()
	names, counts := s.commandCounts()
	switch msg.OutputType {
	case JSON:
		cmds := make(map[string]int64, len(names))
		for i, name := range names {
			cmds[strings.ToLower(name)] = counts[i]
		}
		m["commands"] = cmds
		data, err := json.Marshal(m)
		if err != nil {
			return NOMessage, err
		}
		res = resp.StringValue(`{"ok":true,"stats":` + string(data) +
			`,"elapsed":"` + time.Since(start).String() + "\"}")
	case RESP:
		vals := respValuesSimpleMap(m)
		for i, name := range names {
			vals = append(vals,
				resp.StringValue("cmd_"+strings.ToLower(name)),
				resp.StringValue(strconv.FormatInt(counts[i], 10)))
		}
		res = resp.ArrayValue(vals)
	}
	return res, nil
}

// tryParseType attempts to parse the passed string as an integer, float64 and
// a bool returning any successful parsed values. It returns the passed string
// if all tries fail
func tryParseType(str string) interface{} {
	if v, err := strconv.ParseInt(str, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(str, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(str); err == nil {
		return v
	}
	return str
}

func respValuesSimpleMap(m map[string]interface{}) []resp.Value {
	var keys []string
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var vals []resp.Value
	for _, key := range keys {
		val := m[key]
		vals = append(vals, resp.StringValue(key))
		vals = append(vals, resp.StringValue(fmt.Sprintf("%v", val)))
	}
	return vals
}
