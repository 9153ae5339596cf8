package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/vango-dev/vtree/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vtree.json"

	// DefaultPort is the default server port.
	DefaultPort = 7070

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultBasePath is the URL prefix the server mounts its routes under.
	DefaultBasePath = "/"

	// DefaultMetricsNamespace prefixes every exported metric name.
	DefaultMetricsNamespace = "vtree"
)

// Snapshot drivers.
const (
	DriverMemory = "memory"
	DriverBolt   = "bolt"
	DriverS3     = "s3"
)

// DefaultS3Region is used when the s3 driver has no region.
const DefaultS3Region = "us-east-1"

// Config represents the complete vtree.json configuration.
type Config struct {
	// Server contains the patch streaming server settings.
	Server ServerConfig `json:"server"`

	// Diff contains reconciliation settings.
	Diff DiffConfig `json:"diff"`

	// Snapshot selects where the last rendered tree of each session is kept.
	Snapshot SnapshotConfig `json:"snapshot"`

	// Log contains logging settings.
	Log LogConfig `json:"log"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// BasePath is the URL prefix for every route.
	BasePath string `json:"basePath,omitempty"`
}

// DiffConfig contains reconciliation settings.
type DiffConfig struct {
	// Keyed enables key-based child matching. Positional matching is used
	// when false.
	Keyed bool `json:"keyed"`
}

// SnapshotConfig contains snapshot store settings.
type SnapshotConfig struct {
	// Driver is one of "memory", "bolt" or "s3".
	Driver string `json:"driver,omitempty"`

	// Path is the database file for the bolt driver.
	Path string `json:"path,omitempty"`

	// Bucket is the S3 bucket for the s3 driver.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every S3 object key.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region of the bucket.
	// Default: "us-east-1".
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible services.
	Endpoint string `json:"endpoint,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E301").
				WithDetail("No " + ConfigFileName + " found at " + path)
		}
		return nil, errors.New("E301").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E301").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir reads vtree.json from the specified directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, ConfigFileName))
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E301").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E301").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = DefaultBasePath
	}

	if c.Snapshot.Driver == "" {
		c.Snapshot.Driver = DriverMemory
	}
	if c.Snapshot.Driver == DriverBolt && c.Snapshot.Path == "" {
		c.Snapshot.Path = "vtree.db"
	}
	if c.Snapshot.Driver == DriverS3 && c.Snapshot.Region == "" {
		c.Snapshot.Region = DefaultS3Region
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E302").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Server.BasePath == "" || c.Server.BasePath[0] != '/' {
		return errors.New("E302").
			WithDetailf("server.basePath %q must start with '/'", c.Server.BasePath)
	}

	switch c.Snapshot.Driver {
	case DriverMemory, DriverBolt:
	case DriverS3:
		if c.Snapshot.Bucket == "" {
			return errors.New("E302").
				WithDetail("snapshot.bucket is required for the s3 driver")
		}
	default:
		return errors.New("E302").
			WithDetailf("unknown snapshot.driver %q", c.Snapshot.Driver).
			WithSuggestion("Use one of: memory, bolt, s3")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E302").
			WithDetailf("unknown log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E302").
			WithDetailf("unknown log.format %q", c.Log.Format)
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// SnapshotPath returns the bolt database path resolved against the config
// directory.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Snapshot.Path) || c.Dir() == "" {
		return c.Snapshot.Path
	}
	return filepath.Join(c.Dir(), c.Snapshot.Path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
