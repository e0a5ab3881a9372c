// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON or YAML config file
// and environment variables (in increasing order of precedence).
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvProduction is the APP_ENV value that disables development fallbacks.
const EnvProduction = "production"

// ErrMissingSecret is returned by Validate when production runs without JWT_SECRET.
var ErrMissingSecret = errors.New("JWT_SECRET must be set in production")

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address" yaml:"server_address"`

	// DatabaseDSN holds the database connection string. A "sqlite://" prefix selects SQLite.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-" yaml:"-"`

	// JWTSecret signs and verifies access tokens.
	JWTSecret string `json:"jwt_secret" yaml:"jwt_secret"`

	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration `json:"-" yaml:"-"`

	// Env is the deployment environment ("development" or "production").
	Env string `json:"env" yaml:"env"`

	// LogLevel is the minimum zap level.
	LogLevel string `json:"log_level" yaml:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert" yaml:"tls_cert"`
	TLSKey  string `json:"tls_key" yaml:"tls_key"`

	// MetricsEnabled mounts /metrics.
	MetricsEnabled bool `json:"metrics_enabled" yaml:"metrics_enabled"`

	// TokenTTLRaw is the duration string read from the config file.
	TokenTTLRaw string `json:"token_ttl" yaml:"token_ttl"`

	// secretGenerated is set when Validate filled in a development secret.
	secretGenerated bool
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	RegisterFlags(flag.CommandLine, options)
}

// RegisterFlags binds every option to fs with its default value.
func RegisterFlags(fs *flag.FlagSet, o *Options) {
	fs.StringVar(&o.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&o.DatabaseDSN, "d", "sqlite://:memory:", "db address")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&o.JWTSecret, "jwt-secret", "", "secret used to sign access tokens")
	fs.DurationVar(&o.TokenTTL, "token-ttl", 60*time.Minute, "access token lifetime")
	fs.StringVar(&o.Env, "env", "development", "deployment environment")
	fs.StringVar(&o.LogLevel, "l", "info", "log level")
	fs.StringVar(&o.TLSCert, "tls-cert", "", "TLS certificate file")
	fs.StringVar(&o.TLSKey, "tls-key", "", "TLS key file")
	fs.BoolVar(&o.MetricsEnabled, "metrics", true, "expose /metrics")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() (*Options, error) {
	flag.Parse()
	if err := Load(options, os.LookupEnv); err != nil {
		return nil, err
	}
	return options, nil
}

// ParseArgs is Parse over an explicit argument list and environment lookup.
func ParseArgs(args []string, lookup func(string) (string, bool)) (*Options, error) {
	o := &Options{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	RegisterFlags(fs, o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := Load(o, lookup); err != nil {
		return nil, err
	}
	return o, nil
}

// Load applies the config file and then environment overrides on top of o.
func Load(o *Options, lookup func(string) (string, bool)) error {
	// Override flags with environment variables if set
	if configPath, ok := lookup("CONFIG"); ok && configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			if err := readFile(o); err != nil {
				return err
			}
		}
	}

	if v, ok := lookup("SERVER_ADDRESS"); ok && v != "" {
		o.Port = v
	}
	if v, ok := lookup("DATABASE_DSN"); ok && v != "" {
		o.DatabaseDSN = v
	}
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		o.JWTSecret = v
	}
	if v, ok := lookup("TOKEN_TTL"); ok && v != "" {
		o.TokenTTLRaw = v
	}
	if v, ok := lookup("APP_ENV"); ok && v != "" {
		o.Env = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		o.LogLevel = v
	}
	if v, ok := lookup("TLS_CERT"); ok && v != "" {
		o.TLSCert = v
	}
	if v, ok := lookup("TLS_KEY"); ok && v != "" {
		o.TLSKey = v
	}

	if o.TokenTTLRaw != "" {
		ttl, err := time.ParseDuration(o.TokenTTLRaw)
		if err != nil {
			return fmt.Errorf("parse token ttl %q: %w", o.TokenTTLRaw, err)
		}
		o.TokenTTL = ttl
	}
	if o.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", o.TokenTTL)
	}
	return nil
}

func readFile(o *Options) error {
	data, err := os.ReadFile(o.Config)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(o.Config)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, o)
	default:
		err = json.Unmarshal(data, o)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

// IsProduction reports whether the production environment is selected.
func (o *Options) IsProduction() bool {
	return strings.EqualFold(o.Env, EnvProduction)
}

// TLSEnabled reports whether both certificate and key are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// Validate enforces the secret rule: production requires JWT_SECRET, any
// other environment gets a random per-process secret when none is set.
func (o *Options) Validate() error {
	if o.JWTSecret != "" {
		return nil
	}
	if o.IsProduction() {
		return ErrMissingSecret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate development secret: %w", err)
	}
	o.JWTSecret = hex.EncodeToString(buf)
	o.secretGenerated = true
	return nil
}

// SecretGenerated reports whether Validate generated a development secret.
func (o *Options) SecretGenerated() bool {
	return o.secretGenerated
}
