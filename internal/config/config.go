package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fvclaus/winmon/internal/logger"
)

// ToolsConfig holds the external commands the exec backend and command
// notifier invoke.
type ToolsConfig struct {
	Wmctrl     string `json:"wmctrl" yaml:"wmctrl"`
	Xdotool    string `json:"xdotool" yaml:"xdotool"`
	NotifySend string `json:"notify_send" yaml:"notify_send"`
}

// Config holds all winmon settings
type Config struct {
	IntervalSeconds int         `json:"interval_seconds" yaml:"interval_seconds"`
	LogLevel        string      `json:"log_level" yaml:"log_level"`
	Backend         string      `json:"backend" yaml:"backend"`
	Notifier        string      `json:"notifier" yaml:"notifier"`
	ServerPort      int         `json:"server_port" yaml:"server_port"`
	HistorySize     int         `json:"history_size" yaml:"history_size"`
	Tools           ToolsConfig `json:"tools" yaml:"tools"`
}

// Interval returns the poll interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager. An empty configFile
// selects the default path under the user config directory.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		actualConfigPath = filepath.Join(homeDir, ".config", "winmon", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(actualConfigPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{
		configPath: actualConfigPath,
	}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = m.getDefaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Config loaded")

	return m, nil
}

// getDefaults returns default configuration
func (m *Manager) getDefaults() *Config {
	return &Config{
		IntervalSeconds: 2,
		LogLevel:        "info",
		Backend:         "exec",
		Notifier:        "command",
		ServerPort:      8080,
		HistorySize:     100,
		Tools: ToolsConfig{
			Wmctrl:     "wmctrl",
			Xdotool:    "xdotool",
			NotifySend: "notify-send",
		},
	}
}

// load reads the configuration from disk
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Fill unset fields with defaults
	defaults := m.getDefaults()
	if cfg.IntervalSeconds <= 0 {
		cfg.IntervalSeconds = defaults.IntervalSeconds
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.Backend == "" {
		cfg.Backend = defaults.Backend
	}
	if cfg.Notifier == "" {
		cfg.Notifier = defaults.Notifier
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = defaults.ServerPort
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaults.HistorySize
	}
	if cfg.Tools.Wmctrl == "" {
		cfg.Tools.Wmctrl = defaults.Tools.Wmctrl
	}
	if cfg.Tools.Xdotool == "" {
		cfg.Tools.Xdotool = defaults.Tools.Xdotool
	}
	if cfg.Tools.NotifySend == "" {
		cfg.Tools.NotifySend = defaults.Tools.NotifySend
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()

	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	data, err := yaml.Marshal(m.config)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// SetLogLevel updates the log level
func (m *Manager) SetLogLevel(level string) {
	m.mu.Lock()
	m.config.LogLevel = level
	m.mu.Unlock()
}

// SetInterval updates the poll interval in seconds
func (m *Manager) SetInterval(seconds int) {
	m.mu.Lock()
	m.config.IntervalSeconds = seconds
	m.mu.Unlock()
}

// SetPort updates the status server port
func (m *Manager) SetPort(port int) {
	m.mu.Lock()
	m.config.ServerPort = port
	m.mu.Unlock()
}

// SetBackend updates the window backend selection
func (m *Manager) SetBackend(backend string) {
	m.mu.Lock()
	m.config.Backend = backend
	m.mu.Unlock()
}

// SetNotifier updates the notifier selection
func (m *Manager) SetNotifier(notifier string) {
	m.mu.Lock()
	m.config.Notifier = notifier
	m.mu.Unlock()
}

// SetValue sets a configuration value by key and persists it.
func (m *Manager) SetValue(key, value string) error {
	switch key {
	case "interval_seconds":
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			return fmt.Errorf("invalid interval: %s", value)
		}
		m.SetInterval(seconds)
	case "log_level":
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[value] {
			return fmt.Errorf("invalid log level: %s (use: debug, info, warn, error)", value)
		}
		m.SetLogLevel(value)
	case "backend":
		if value != "exec" && value != "x11" {
			return fmt.Errorf("invalid backend: %s (use: exec, x11)", value)
		}
		m.SetBackend(value)
	case "notifier":
		if value != "command" && value != "dbus" {
			return fmt.Errorf("invalid notifier: %s (use: command, dbus)", value)
		}
		m.SetNotifier(value)
	case "server_port":
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid port number: %s", value)
		}
		m.SetPort(port)
	case "history_size":
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			return fmt.Errorf("invalid history size: %s", value)
		}
		m.mu.Lock()
		m.config.HistorySize = size
		m.mu.Unlock()
	case "tools.wmctrl":
		m.mu.Lock()
		m.config.Tools.Wmctrl = value
		m.mu.Unlock()
	case "tools.xdotool":
		m.mu.Lock()
		m.config.Tools.Xdotool = value
		m.mu.Unlock()
	case "tools.notify_send":
		m.mu.Lock()
		m.config.Tools.NotifySend = value
		m.mu.Unlock()
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return m.Save()
}

// GetValue returns a configuration value by key.
func (m *Manager) GetValue(key string) (string, error) {
	cfg := m.Get()
	switch key {
	case "interval_seconds":
		return strconv.Itoa(cfg.IntervalSeconds), nil
	case "log_level":
		return cfg.LogLevel, nil
	case "backend":
		return cfg.Backend, nil
	case "notifier":
		return cfg.Notifier, nil
	case "server_port":
		return strconv.Itoa(cfg.ServerPort), nil
	case "history_size":
		return strconv.Itoa(cfg.HistorySize), nil
	case "tools.wmctrl":
		return cfg.Tools.Wmctrl, nil
	case "tools.xdotool":
		return cfg.Tools.Xdotool, nil
	case "tools.notify_send":
		return cfg.Tools.NotifySend, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}
