// Package config loads the program's settings from a settings file, the environment and a .env
// file, in increasing order of precedence.
package config

import "encoding/json"
import "errors"
import "fmt"
import "io/fs"
import "os"
import "path/filepath"
import "strconv"
import "strings"
import "time"

import "github.com/joho/godotenv"
import "gopkg.in/yaml.v3"

import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/cassandra"

// DefaultPath is the settings file read when no other is named. It may be missing.
const DefaultPath = "appsettings.json"

var (
	ErrMissingContactPoint = errors.New("Cassandra:ContactPoint is not set")
	ErrMissingKeyspace     = errors.New("Cassandra:KeyspaceName is not set")
)

// Cassandra holds the connection settings, laid out as in appsettings.json:
//
//	{"Cassandra": {"ContactPoint": "127.0.0.1", "KeyspaceName": "todo"}}
type Cassandra struct {
	ContactPoint string `json:"ContactPoint" yaml:"ContactPoint"` // comma-separated hosts
	Port         int    `json:"Port" yaml:"Port"`
	KeyspaceName string `json:"KeyspaceName" yaml:"KeyspaceName"`
	Consistency  string `json:"Consistency" yaml:"Consistency"`
	Timeout      string `json:"Timeout" yaml:"Timeout"` // a time.Duration string, e.g. 5s
}

// Logging selects the level and encoding of the log written to stderr.
type Logging struct {
	Level  string `json:"Level" yaml:"Level"`
	Format string `json:"Format" yaml:"Format"` // text or json
}

// Config is the full set of settings, as read from appsettings.json or its YAML equivalent.
type Config struct {
	Cassandra Cassandra `json:"Cassandra" yaml:"Cassandra"`
	Logging   Logging   `json:"Logging" yaml:"Logging"`
}

// Default returns the settings used where nothing else is given.
func Default() *Config {
	return &Config{
		Cassandra: Cassandra{Consistency: "quorum"},
		Logging:   Logging{Level: "info", Format: "text"},
	}
}

// Load reads the settings file at path, or DefaultPath if path is empty, and then applies
// overrides from the environment. Variables in a .env file in the working directory are added to
// the environment first, without replacing ones that are already set. Only the default settings
// file may be missing.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) applyEnv() error {
	for name, dest := range map[string]*string{
		"CASSANDRA_CONTACT_POINT": &cfg.Cassandra.ContactPoint,
		"CASSANDRA_KEYSPACE":      &cfg.Cassandra.KeyspaceName,
		"CASSANDRA_CONSISTENCY":   &cfg.Cassandra.Consistency,
		"CASSANDRA_TIMEOUT":       &cfg.Cassandra.Timeout,
		"LOG_LEVEL":               &cfg.Logging.Level,
		"LOG_FORMAT":              &cfg.Logging.Format,
	} {
		if v, ok := os.LookupEnv(name); ok {
			*dest = v
		}
	}
	if v := os.Getenv("CASSANDRA_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CASSANDRA_PORT: %w", err)
		}
		cfg.Cassandra.Port = port
	}
	return nil
}

// ValidateKeyspace checks that a keyspace name is given and can be used in DDL as is. The name
// must be lowercase, since the cluster folds it in DDL but not when a session switches to it.
func (cfg *Config) ValidateKeyspace() error {
	name := cfg.Cassandra.KeyspaceName
	if name == "" {
		return ErrMissingKeyspace
	}
	if !cassandra.ValidIdentifier(name) {
		return fmt.Errorf("Cassandra:KeyspaceName %q: %w", name, cassandra.ErrInvalidIdentifier)
	}
	return nil
}

// Validate checks everything a run needs.
func (cfg *Config) Validate() error {
	if len(cfg.contactPoints()) == 0 {
		return ErrMissingContactPoint
	}
	if err := cfg.ValidateKeyspace(); err != nil {
		return err
	}
	if cfg.Cassandra.Port < 0 || cfg.Cassandra.Port > 65535 {
		return fmt.Errorf("Cassandra:Port %d is out of range", cfg.Cassandra.Port)
	}
	if _, err := cassandra.ParseConsistency(cfg.Cassandra.Consistency); err != nil {
		return fmt.Errorf("Cassandra:Consistency: %w", err)
	}
	timeout, err := cfg.timeout()
	if err != nil {
		return fmt.Errorf("Cassandra:Timeout: %w", err)
	}
	if timeout < 0 {
		return fmt.Errorf("Cassandra:Timeout %s is negative", timeout)
	}
	return nil
}

func (cfg *Config) contactPoints() []string {
	var nodes []string
	for _, node := range strings.Split(cfg.Cassandra.ContactPoint, ",") {
		if node = strings.TrimSpace(node); node != "" {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func (cfg *Config) timeout() (time.Duration, error) {
	if cfg.Cassandra.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(cfg.Cassandra.Timeout)
}

// CassandraConfig returns the connection settings for the configured keyspace. Call Validate
// first; an unparsable timeout is treated as unset.
func (cfg *Config) CassandraConfig() cassandra.CassandraConfig {
	timeout, _ := cfg.timeout()
	return cassandra.CassandraConfig{
		Keyspace:    cfg.Cassandra.KeyspaceName,
		Node:        cfg.contactPoints(),
		Port:        cfg.Cassandra.Port,
		Consistency: cfg.Cassandra.Consistency,
		Timeout:     timeout,
	}
}
