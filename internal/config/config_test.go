package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseArgs_Defaults(t *testing.T) {
	o, err := ParseArgs([]string{"-c", ""}, envFrom(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Port != "localhost:8080" {
		t.Errorf("Port = %q", o.Port)
	}
	if o.DatabaseDSN != "sqlite://:memory:" {
		t.Errorf("DatabaseDSN = %q", o.DatabaseDSN)
	}
	if o.TokenTTL != 60*time.Minute {
		t.Errorf("TokenTTL = %s; want 1h", o.TokenTTL)
	}
	if o.IsProduction() || o.TLSEnabled() {
		t.Errorf("unexpected production/TLS defaults: %+v", o)
	}
}

func TestParseArgs_EnvOverridesFlags(t *testing.T) {
	o, err := ParseArgs(
		[]string{"-c", "", "-a", ":9000", "-d", "postgres://flag"},
		envFrom(map[string]string{
			"SERVER_ADDRESS": ":7000",
			"DATABASE_DSN":   "postgres://env",
			"JWT_SECRET":     "s3cret",
			"TOKEN_TTL":      "15m",
			"APP_ENV":        "production",
			"LOG_LEVEL":      "debug",
			"TLS_CERT":       "server.crt",
			"TLS_KEY":        "server.key",
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Port != ":7000" || o.DatabaseDSN != "postgres://env" {
		t.Errorf("env did not override flags: %+v", o)
	}
	if o.JWTSecret != "s3cret" || o.TokenTTL != 15*time.Minute || o.LogLevel != "debug" {
		t.Errorf("unexpected options: %+v", o)
	}
	if !o.IsProduction() || !o.TLSEnabled() {
		t.Errorf("expected production with TLS: %+v", o)
	}
}

func TestParseArgs_ConfigFiles(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(jsonPath, []byte(`{"server_address":":8181","token_ttl":"30m","env":"staging"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(yamlPath, []byte("server_address: \":8282\"\ndatabase_dsn: sqlite://todo.db\nlog_level: warn\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		env      map[string]string
		wantPort string
		check    func(t *testing.T, o *Options)
	}{
		{
			name:     "json via flag",
			args:     []string{"-c", jsonPath},
			wantPort: ":8181",
			check: func(t *testing.T, o *Options) {
				if o.TokenTTL != 30*time.Minute || o.Env != "staging" {
					t.Errorf("unexpected options: %+v", o)
				}
			},
		},
		{
			name:     "yaml via env",
			env:      map[string]string{"CONFIG": yamlPath},
			wantPort: ":8282",
			check: func(t *testing.T, o *Options) {
				if o.DatabaseDSN != "sqlite://todo.db" || o.LogLevel != "warn" {
					t.Errorf("unexpected options: %+v", o)
				}
			},
		},
		{
			name:     "env beats file",
			args:     []string{"-c", jsonPath},
			env:      map[string]string{"SERVER_ADDRESS": ":9999"},
			wantPort: ":9999",
		},
		{
			name:     "missing file ignored",
			args:     []string{"-c", filepath.Join(dir, "absent.json")},
			wantPort: "localhost:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := ParseArgs(tt.args, envFrom(tt.env))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if o.Port != tt.wantPort {
				t.Errorf("Port = %q; want %q", o.Port, tt.wantPort)
			}
			if tt.check != nil {
				tt.check(t, o)
			}
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := ParseArgs([]string{"-c", broken}, envFrom(nil)); err == nil {
		t.Error("expected parse error for malformed config file")
	}
	if _, err := ParseArgs([]string{"-c", ""}, envFrom(map[string]string{"TOKEN_TTL": "soon"})); err == nil {
		t.Error("expected error for malformed TOKEN_TTL")
	}
	if _, err := ParseArgs([]string{"-c", "", "-token-ttl", "0s"}, envFrom(nil)); err == nil {
		t.Error("expected error for zero ttl")
	}
}

func TestValidate(t *testing.T) {
	prod := &Options{Env: "production"}
	if err := prod.Validate(); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("production without secret: err = %v; want ErrMissingSecret", err)
	}

	dev := &Options{Env: "development"}
	if err := dev.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dev.JWTSecret) != 64 || !dev.SecretGenerated() {
		t.Errorf("expected generated 32-byte hex secret, got %q", dev.JWTSecret)
	}

	other := &Options{Env: "development"}
	_ = other.Validate()
	if other.JWTSecret == dev.JWTSecret {
		t.Error("generated secrets must differ between processes")
	}

	set := &Options{Env: "production", JWTSecret: "configured"}
	if err := set.Validate(); err != nil || set.SecretGenerated() {
		t.Errorf("configured secret: err = %v, generated = %v", err, set.SecretGenerated())
	}
}
