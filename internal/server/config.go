package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/match"
	"github.com/tidwall/pretty"
	"github.com/tidwall/resp"
	"github.com/tidwall/sjson"
)

const (
	defaultKeepAlive     = 300 // seconds
	defaultProtectedMode = "yes"
	defaultCacheSize     = 256
)

var defaultMaxConcurrency = int64(runtime.NumCPU())

// Config keys
const (
	ServerID       = "server_id"
	RequirePass    = "requirepass"
	ProtectedMode  = "protected-mode"
	KeepAlive      = "keepalive"
	LogConfig      = "logconfig"
	CacheSize      = "cachesize"
	MaxConcurrency = "maxconcurrency"
	MaxPoints      = "maxpoints"
)

var validProperties = []string{RequirePass, ProtectedMode, KeepAlive,
	LogConfig, CacheSize, MaxConcurrency, MaxPoints}

// Config is a lineslice config
type Config struct {
	path string

	mu sync.RWMutex

	_serverID string

	_requirePassP    string
	_requirePass     string
	_protectedModeP  string
	_protectedMode   string
	_keepAliveP      string
	_keepAlive       int64
	_logConfigP      string
	_logConfig       string
	_cacheSizeP      string
	_cacheSize       int64
	_maxConcurrencyP string
	_maxConcurrency  int64
	_maxPointsP      string
	_maxPoints       int64
}

func loadConfig(path string) (*Config, error) {
	var json string
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		json = string(data)
	}
	if json != "" && !gjson.Valid(json) {
		return nil, clientErrorf("invalid config file '%s'", path)
	}

	config := &Config{
		path:             path,
		_serverID:        gjson.Get(json, ServerID).String(),
		_requirePassP:    gjson.Get(json, RequirePass).String(),
		_protectedModeP:  gjson.Get(json, ProtectedMode).String(),
		_keepAliveP:      gjson.Get(json, KeepAlive).String(),
		_cacheSizeP:      gjson.Get(json, CacheSize).String(),
		_maxConcurrencyP: gjson.Get(json, MaxConcurrency).String(),
		_maxPointsP:      gjson.Get(json, MaxPoints).String(),
	}
	if lcfg := gjson.Get(json, LogConfig); lcfg.IsObject() {
		config._logConfigP = lcfg.Raw
	} else {
		config._logConfigP = lcfg.String()
	}

	if config._serverID == "" {
		config._serverID = randomKey(16)
	}

	// load properties
	for _, name := range validProperties {
		if err := config.setProperty(name, config.persisted(name), true); err != nil {
			return nil, err
		}
	}
	if err := config.write(false); err != nil {
		return nil, err
	}
	return config, nil
}

// persisted returns the value of a property as it was loaded from disk.
func (config *Config) persisted(name string) string {
	switch name {
	case RequirePass:
		return config._requirePassP
	case ProtectedMode:
		return config._protectedModeP
	case KeepAlive:
		return config._keepAliveP
	case LogConfig:
		return config._logConfigP
	case CacheSize:
		return config._cacheSizeP
	case MaxConcurrency:
		return config._maxConcurrencyP
	case MaxPoints:
		return config._maxPointsP
	}
	return ""
}

func (config *Config) write(writeProperties bool) error {
	config.mu.Lock()
	defer config.mu.Unlock()

	if writeProperties {
		// save properties
		config._requirePassP = config._requirePass
		if config._protectedMode == defaultProtectedMode {
			config._protectedModeP = ""
		} else {
			config._protectedModeP = config._protectedMode
		}
		config._keepAliveP = formatNonDefault(config._keepAlive, defaultKeepAlive)
		config._cacheSizeP = formatNonDefault(config._cacheSize, defaultCacheSize)
		config._maxConcurrencyP = formatNonDefault(config._maxConcurrency,
			defaultMaxConcurrency)
		config._maxPointsP = formatNonDefault(config._maxPoints, 0)
		config._logConfigP = config._logConfig
	}

	json := "{}"
	set := func(name string, value interface{}) {
		json, _ = sjson.Set(json, name, value)
	}
	if config._serverID != "" {
		set(ServerID, config._serverID)
	}
	if config._requirePassP != "" {
		set(RequirePass, config._requirePassP)
	}
	if config._protectedModeP != "" {
		set(ProtectedMode, config._protectedModeP)
	}
	if config._keepAliveP != "" {
		set(KeepAlive, config._keepAliveP)
	}
	if config._cacheSizeP != "" {
		set(CacheSize, config._cacheSizeP)
	}
	if config._maxConcurrencyP != "" {
		set(MaxConcurrency, config._maxConcurrencyP)
	}
	if config._maxPointsP != "" {
		set(MaxPoints, config._maxPointsP)
	}
	if config._logConfigP != "" {
		if gjson.Valid(config._logConfigP) &&
			gjson.Parse(config._logConfigP).IsObject() {
			json, _ = sjson.SetRaw(json, LogConfig, config._logConfigP)
		} else {
			set(LogConfig, config._logConfigP)
		}
	}
	data := pretty.PrettyOptions([]byte(json), &pretty.Options{
		Indent: "\t",
		Width:  80,
	})
	return os.WriteFile(config.path, data, 0600)
}

func formatNonDefault(v, def int64) string {
	if v == def {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func parseCount(value string, def int64, min int64) (int64, bool) {
	if value == "" {
		return def, true
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < min {
		return 0, false
	}
	return n, true
}

func (config *Config) setProperty(name, value string, fromLoad bool) error {
	config.mu.Lock()
	defer config.mu.Unlock()
	var invalid bool
	switch name {
	default:
		return clientErrorf("Unsupported CONFIG parameter: %s", name)
	case RequirePass:
		config._requirePass = value
	case ProtectedMode:
		switch strings.ToLower(value) {
		case "":
			if fromLoad {
				config._protectedMode = defaultProtectedMode
			} else {
				invalid = true
			}
		case "yes", "no":
			config._protectedMode = strings.ToLower(value)
		default:
			invalid = true
		}
	case KeepAlive:
		n, ok := parseCount(value, defaultKeepAlive, 0)
		if ok {
			config._keepAlive = n
		}
		invalid = !ok
	case LogConfig:
		if value != "" && !gjson.Valid(value) {
			invalid = true
		} else {
			config._logConfig = value
		}
	case CacheSize:
		n, ok := parseCount(value, defaultCacheSize, 0)
		if ok {
			config._cacheSize = n
		}
		invalid = !ok
	case MaxConcurrency:
		n, ok := parseCount(value, defaultMaxConcurrency, 1)
		if ok {
			config._maxConcurrency = n
		}
		invalid = !ok
	case MaxPoints:
		n, ok := parseCount(value, 0, 0)
		if ok {
			config._maxPoints = n
		}
		invalid = !ok
	}

	if invalid {
		return clientErrorf("Invalid argument '%s' for CONFIG SET '%s'", value, name)
	}
	return nil
}

func (config *Config) getProperties(pattern string) map[string]interface{} {
	m := make(map[string]interface{})
	for _, name := range validProperties {
		if match.Match(name, pattern) {
			m[name] = config.getProperty(name)
		}
	}
	return m
}

func (config *Config) getProperty(name string) string {
	config.mu.RLock()
	defer config.mu.RUnlock()
	switch name {
	default:
		return ""
	case RequirePass:
		return config._requirePass
	case ProtectedMode:
		return config._protectedMode
	case KeepAlive:
		return strconv.FormatInt(config._keepAlive, 10)
	case LogConfig:
		return config._logConfig
	case CacheSize:
		return strconv.FormatInt(config._cacheSize, 10)
	case MaxConcurrency:
		return strconv.FormatInt(config._maxConcurrency, 10)
	case MaxPoints:
		return strconv.FormatInt(config._maxPoints, 10)
	}
}

func (s *Server) cmdConfigGet(msg *Message) (res resp.Value, err error) {
	start := time.Now()
	vs := msg.Args[1:]
	var ok bool
	var name string

	if vs, name, ok = tokenval(vs); !ok {
		return NOMessage, errInvalidNumberOfArguments
	}
	if len(vs) != 0 {
		return NOMessage, errInvalidNumberOfArguments
	}
	m := s.config.getProperties(name)
	switch msg.OutputType {
	case JSON:
		data, err := json.Marshal(m)
		if err != nil {
			return NOMessage, err
		}
		res = resp.StringValue(`{"ok":true,"properties":` + string(data) +
			`,"elapsed":"` + time.Since(start).String() + "\"}")
	case RESP:
		vals := respValuesSimpleMap(m)
		res = resp.ArrayValue(vals)
	}
	return
}

func (s *Server) cmdConfigSet(msg *Message) (res resp.Value, err error) {
	start := time.Now()
	vs := msg.Args[1:]
	var ok bool
	var name string

	if vs, name, ok = tokenval(vs); !ok {
		return NOMessage, errInvalidNumberOfArguments
	}
	var value string
	if vs, value, ok = tokenval(vs); !ok {
		if strings.ToLower(name) != RequirePass {
			return NOMessage, errInvalidNumberOfArguments
		}
	}
	if len(vs) != 0 {
		return NOMessage, errInvalidNumberOfArguments
	}
	if err := s.config.setProperty(name, value, false); err != nil {
		return NOMessage, err
	}
	switch name {
	case CacheSize:
		s.cache.resize(s.config.cacheSize())
	case MaxConcurrency:
		s.applyConcurrency()
	}
	return OKMessage(msg, start), nil
}

func (s *Server) cmdConfigRewrite(msg *Message) (res resp.Value, err error) {
	start := time.Now()
	vs := msg.Args[1:]

	if len(vs) != 0 {
		return NOMessage, errInvalidNumberOfArguments
	}
	if err := s.config.write(true); err != nil {
		return NOMessage, err
	}
	return OKMessage(msg, start), nil
}

func randomKey(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("random error: " + err.Error())
	}
	return hex.EncodeToString(b)
}

func (config *Config) serverID() string {
	config.mu.RLock()
	v := config._serverID
	config.mu.RUnlock()
	return v
}
func (config *Config) requirePass() string {
	config.mu.RLock()
	v := config._requirePass
	config.mu.RUnlock()
	return v
}
func (config *Config) protectedMode() string {
	config.mu.RLock()
	v := config._protectedMode
	config.mu.RUnlock()
	return v
}
func (config *Config) keepAlive() int64 {
	config.mu.RLock()
	v := config._keepAlive
	config.mu.RUnlock()
	return v
}
func (config *Config) logConfig() string {
	config.mu.RLock()
	v := config._logConfig
	config.mu.RUnlock()
	return v
}
func (config *Config) cacheSize() int {
	config.mu.RLock()
	v := config._cacheSize
	config.mu.RUnlock()
	return int(v)
}
func (config *Config) maxConcurrency() int {
	config.mu.RLock()
	v := config._maxConcurrency
	config.mu.RUnlock()
	return int(v)
}
func (config *Config) maxPoints() int {
	config.mu.RLock()
	v := config._maxPoints
	config.mu.RUnlock()
	return int(v)
}
