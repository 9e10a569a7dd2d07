package internal

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/bptracker/internal/notify"
	"github.com/starford/bptracker/internal/reading"
	"github.com/starford/bptracker/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	Auth    AuthConfig        `yaml:"auth"`
	MQTT    MQTTConfig        `yaml:"mqtt"`
	Entry   EntryConfig       `yaml:"entry"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.MQTT.Validate()
}

// ApplyEnv applies environment overrides. PORT replaces the HTTP port.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		c.App.HTTP.Port = port
	}
	return c.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects the persistence backend.
//
// CSVPath is used by the csv backend, DSN by sqlite (a file path) and
// postgres (a connection string).
type StorageConfig struct {
	Backend string `yaml:"backend"`
	CSVPath string `yaml:"csv_path"`
	DSN     string `yaml:"dsn"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	isCSV := c.Backend == storage.BackendCSV
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required,
			validation.In(storage.BackendCSV, storage.BackendSQLite, storage.BackendPostgres)),
		validation.Field(&c.CSVPath, validation.When(isCSV, validation.Required)),
		validation.Field(&c.DSN, validation.When(!isCSV, validation.Required)),
	)
}

// Target returns the location handed to storage.Open.
func (c *StorageConfig) Target() string {
	if c.Backend == storage.BackendCSV {
		return c.CSVPath
	}
	return c.DSN
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// MQTTConfig controls change notifications to an MQTT broker.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// Validate validates the MQTT configuration.
func (c *MQTTConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Broker, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.Topic, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.ClientID, validation.When(c.Enabled, validation.Required)),
	)
}

// EntryConfig holds the default location of each entry point.
type EntryConfig struct {
	RESTLocation    string `yaml:"rest_location"`
	ConsoleLocation string `yaml:"console_location"`
}

// RESTDefaults is the policy of the REST and MCP surfaces: the timestamp is
// required.
func (c *EntryConfig) RESTDefaults() reading.Defaults {
	return reading.Defaults{Location: c.RESTLocation}
}

// ConsoleDefaults is the policy of the interactive console: an empty
// timestamp means now.
func (c *EntryConfig) ConsoleDefaults() reading.Defaults {
	return reading.Defaults{Now: time.Now, Location: c.ConsoleLocation}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 3000,
			},
		},
		Storage: StorageConfig{
			Backend: storage.BackendCSV,
			CSVPath: "bp_data.csv",
			DSN:     "bp_tracker.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			Topic:    notify.DefaultTopic,
			ClientID: "bptracker",
		},
		Entry: EntryConfig{
			RESTLocation:    "Unknown",
			ConsoleLocation: "Home",
		},
	}
}
