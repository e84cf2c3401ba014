// control/config.go
// Author: momentics <momentics@gmail.com>
//
// YAML configuration model and a thread-safe snapshot store with reload
// propagation.

package control

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type ReactorCfg struct {
	MaxEvents int `yaml:"max_events"`
	// PollTimeoutMS bounds each epoll wait; negative blocks until woken.
	PollTimeoutMS int `yaml:"poll_timeout_ms"`
	PostQueue     int `yaml:"post_queue"`
}

// PollTimeout converts PollTimeoutMS to a duration.
func (c ReactorCfg) PollTimeout() time.Duration {
	if c.PollTimeoutMS < 0 {
		return -1
	}
	return time.Duration(c.PollTimeoutMS) * time.Millisecond
}

// WorkersCfg sizes the completion pool. Count 0 runs completions inline
// on the loop goroutine.
type WorkersCfg struct {
	Count int `yaml:"count"`
	Queue int `yaml:"queue"`
}

type LoggingCfg struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type MetricsCfg struct {
	Enable bool   `yaml:"enable"`
	Addr   string `yaml:"addr"`
	Path   string `yaml:"path"`
}

type ServerCfg struct {
	Addr       string `yaml:"addr"`
	Backlog    int    `yaml:"backlog"`
	ReadBuffer int    `yaml:"read_buffer"`
}

// Config is the root of the YAML document.
type Config struct {
	Reactor ReactorCfg `yaml:"reactor"`
	Workers WorkersCfg `yaml:"workers"`
	Logging LoggingCfg `yaml:"logging"`
	Metrics MetricsCfg `yaml:"metrics"`
	Server  ServerCfg  `yaml:"server"`
}

// DefaultConfig returns the settings used for keys absent from the file.
func DefaultConfig() Config {
	return Config{
		Reactor: ReactorCfg{MaxEvents: 128, PollTimeoutMS: 100, PostQueue: 1024},
		Workers: WorkersCfg{Count: 0, Queue: 256},
		Logging: LoggingCfg{Level: "info", Format: "text"},
		Metrics: MetricsCfg{Enable: false, Addr: "127.0.0.1:9102", Path: "/metrics"},
		Server:  ServerCfg{Addr: "127.0.0.1:7000", Backlog: 128, ReadBuffer: 4096},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Reactor.MaxEvents < 1:
		return fmt.Errorf("reactor.max_events must be >= 1, got %d", c.Reactor.MaxEvents)
	case c.Reactor.PostQueue < 1:
		return fmt.Errorf("reactor.post_queue must be >= 1, got %d", c.Reactor.PostQueue)
	case c.Workers.Count < 0:
		return fmt.Errorf("workers.count must be >= 0, got %d", c.Workers.Count)
	case c.Workers.Queue < 0:
		return fmt.Errorf("workers.queue must be >= 0, got %d", c.Workers.Queue)
	case c.Server.ReadBuffer < 1:
		return fmt.Errorf("server.read_buffer must be >= 1, got %d", c.Server.ReadBuffer)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if f := strings.ToLower(c.Logging.Format); f != "text" && f != "json" {
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if err := validHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("server.addr: %w", err)
	}
	if c.Metrics.Enable {
		if err := validHostPort(c.Metrics.Addr); err != nil {
			return fmt.Errorf("metrics.addr: %w", err)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
		}
	}
	return nil
}

func validHostPort(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 0xffff {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

// ParseConfig decodes b over DefaultConfig and validates the result.
func ParseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config invalid: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), err
	}
	return ParseConfig(b)
}

// ConfigStore holds the active Config and notifies listeners on change.
type ConfigStore struct {
	mu        sync.RWMutex
	config    Config
	listeners []func(Config)
}

// NewConfigStore initializes a store with cfg as the active snapshot.
func NewConfigStore(cfg Config) *ConfigStore {
	return &ConfigStore{config: cfg}
}

// Snapshot returns a copy of the active config.
func (cs *ConfigStore) Snapshot() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// SetConfig validates and installs cfg, then calls every listener with it
// in registration order. An invalid cfg leaves the store unchanged.
func (cs *ConfigStore) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.config = cfg
	listeners := append(([]func(Config))(nil), cs.listeners...)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	if fn == nil {
		return
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// ErrNoConfigPath is returned by WatchConfig for an empty path.
var ErrNoConfigPath = errors.New("control: no config path to watch")
