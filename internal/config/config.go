package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service name under which database
// passwords are stored, keyed by connection name.
const KeyringService = "sqlgrader"

// Config represents the application configuration.
type Config struct {
	Server     Server       `mapstructure:"server" yaml:"server"`
	Log        Log          `mapstructure:"log" yaml:"log"`
	Evaluation Evaluation   `mapstructure:"evaluation" yaml:"evaluation"`
	Databases  []Connection `mapstructure:"databases" yaml:"databases" validate:"unique=ID,dive"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	CORSOrigins    []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gt=0"`
}

// Log configures logging output.
type Log struct {
	Level         string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	HumanReadable bool   `mapstructure:"human_readable" yaml:"human_readable"`
}

// Evaluation holds the grading limits and feedback locale.
type Evaluation struct {
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	MaxRows        int           `mapstructure:"max_rows" yaml:"max_rows" validate:"gt=0"`
	MaxQueryLength int           `mapstructure:"max_query_length" yaml:"max_query_length" validate:"gt=0"`
	MaxParentheses int           `mapstructure:"max_parentheses" yaml:"max_parentheses" validate:"gt=0"`
	Locale         string        `mapstructure:"locale" yaml:"locale" validate:"oneof=en es"`
}

// Connection represents a grading database target.
type Connection struct {
	ID       int64  `mapstructure:"id" yaml:"id" validate:"gt=0"`
	Name     string `mapstructure:"name" yaml:"name" validate:"required"`
	Driver   string `mapstructure:"driver" yaml:"driver" validate:"oneof=postgres sqlite"`
	Host     string `mapstructure:"host" yaml:"host" validate:"required_if=Driver postgres"`
	Port     int    `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Database string `mapstructure:"database" yaml:"database" validate:"required_if=Driver postgres"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
	Path     string `mapstructure:"path" yaml:"path,omitempty" validate:"required_if=Driver sqlite"`
	MaxConns int    `mapstructure:"max_conns" yaml:"max_conns" validate:"gte=0"`
}

// DSN builds a PostgreSQL connection string from the connection profile,
// using password for the credentials.
func (c Connection) DSN(password string) string {
	u := url.URL{Scheme: "postgresql", Path: "/" + c.Database}
	if c.Username != "" {
		if password != "" {
			u.User = url.UserPassword(c.Username, password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	u.Host = c.Host
	if c.Port > 0 {
		u.Host = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
	}
	return u.String()
}

// DisplayString returns a human-readable summary of the connection.
func (c Connection) DisplayString() string {
	if c.Driver == "sqlite" {
		return "sqlite:" + c.Path
	}
	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return s
}

// ResolvePassword returns the configured password, falling back to the OS
// keyring entry for the connection name. A missing entry is not an error.
func (c Connection) ResolvePassword() (string, error) {
	if c.Password != "" || c.Username == "" {
		return c.Password, nil
	}
	secret, err := keyring.Get(KeyringService, c.Name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("keyring: %w", err)
	}
	return secret, nil
}

// StorePassword saves a connection password in the OS keyring.
func StorePassword(name, password string) error {
	if err := keyring.Set(KeyringService, name, password); err != nil {
		return fmt.Errorf("keyring: %w", err)
	}
	return nil
}

// ParseDSN parses a PostgreSQL connection string into a Connection.
func ParseDSN(dsn string) (Connection, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Connection{}, fmt.Errorf("invalid DSN: unsupported scheme %q", u.Scheme)
	}

	conn := Connection{
		Driver:   "postgres",
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	if conn.Port == 0 {
		conn.Port = 5432
	}

	conn.Name = fmt.Sprintf("postgres-%s-%d-%s", conn.Host, conn.Port, conn.Database)

	return conn, nil
}

// Connection returns the connection registered under id.
func (cfg *Config) Connection(id int64) (Connection, bool) {
	for _, c := range cfg.Databases {
		if c.ID == id {
			return c, true
		}
	}
	return Connection{}, false
}

// AddConnection appends a connection if its id is not taken.
func (cfg *Config) AddConnection(conn Connection) bool {
	if _, ok := cfg.Connection(conn.ID); ok {
		return false
	}
	cfg.Databases = append(cfg.Databases, conn)
	return true
}
