package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgconfig "github.com/starford/bptracker/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.App.HTTP.Address() != ":3000" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
	if cfg.Storage.Target() != "bp_data.csv" {
		t.Errorf("target = %q", cfg.Storage.Target())
	}
}

func TestStorageConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     StorageConfig
		wantErr bool
		target  string
	}{
		{"csv", StorageConfig{Backend: "csv", CSVPath: "a.csv"}, false, "a.csv"},
		{"csv without path", StorageConfig{Backend: "csv", DSN: "x.db"}, true, ""},
		{"sqlite", StorageConfig{Backend: "sqlite", CSVPath: "a.csv", DSN: "bp.db"}, false, "bp.db"},
		{"postgres without dsn", StorageConfig{Backend: "postgres"}, true, ""},
		{"unknown", StorageConfig{Backend: "mongo", DSN: "x"}, true, ""},
		{"empty", StorageConfig{}, true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && tc.cfg.Target() != tc.target {
				t.Errorf("Target() = %q, want %q", tc.cfg.Target(), tc.target)
			}
		})
	}
}

func TestMQTTConfig_RequiredWhenEnabled(t *testing.T) {
	cfg := MQTTConfig{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Error("enabled MQTT without broker should fail")
	}
	cfg = MQTTConfig{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled MQTT should pass: %v", err)
	}
}

func TestMQTTConfig_EmptyTopicRejected(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.MQTT.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("enabled MQTT with defaults should pass: %v", err)
	}
	cfg.MQTT.Topic = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(strings.ToLower(err.Error()), "topic") {
		t.Errorf("err = %v, want topic error", err)
	}
}

func TestApplyEnv_Port(t *testing.T) {
	cfg := NewDefaultConfig()
	env := map[string]string{"PORT": "8081"}
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatal(err)
	}
	if cfg.App.HTTP.Port != 8081 {
		t.Errorf("port = %d, want 8081", cfg.App.HTTP.Port)
	}

	env["PORT"] = "http"
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err == nil {
		t.Error("non-numeric PORT should fail")
	}
}

func TestEntryDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	rest := cfg.Entry.RESTDefaults()
	if rest.Now != nil || rest.Location != "Unknown" {
		t.Errorf("REST defaults = %+v", rest)
	}
	console := cfg.Entry.ConsoleDefaults()
	if console.Now == nil || console.Location != "Home" {
		t.Errorf("console defaults = %+v", console)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("BP_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `app:
  log_level: debug
  http:
    port: 9090
storage:
  backend: sqlite
  dsn: /tmp/bp.db
auth:
  mode: token
  token: ${BP_TOKEN}
mqtt:
  enabled: true
  broker: tcp://mqtt:1883
  client_id: bp-test
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.Storage.Target() != "/tmp/bp.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Auth.Token != "from-env" || !cfg.Auth.AuthEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.MQTT.Topic != "bptracker/entries" {
		t.Errorf("topic default lost: %q", cfg.MQTT.Topic)
	}
	if cfg.Entry.RESTLocation != "Unknown" {
		t.Errorf("entry defaults lost: %+v", cfg.Entry)
	}
}
