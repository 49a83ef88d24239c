// Package config loads the adda configuration file and applies the
// environment overrides inherited from the Azure Functions deployment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"adda/internal/adapters/aztables"
	"adda/internal/domain"
	"adda/internal/orchestrator"
)

// Environment variables read on top of the file
const (
	EnvConfigPath          = "ADDA_CONFIG"
	EnvLogLevel            = "ADDA_LOG_LEVEL"
	EnvOrganizationURL     = "AzureDevOpsOrganizationUri"
	EnvJiraURL             = "JiraOrganizationUri"
	EnvKeyVaultURL         = "AddaKeyVaultUri"
	EnvStorageConnection   = "DevOpsDataStorageAppSetting"
	defaultConfigFileName  = "config.yaml"
	defaultExportRoot      = "~/.local/share/adda/blobs"
	maxExportBatchSize     = domain.MaxWorkItemsPerCall
	defaultExportBatchSize = domain.MaxWorkItemsPerCall
)

// Table backends
const (
	BackendSQLite   = "sqlite"
	BackendAzTables = "aztables"
	BackendMemory   = "memory"
)

// Blob backends
const (
	BlobFilesystem = "filesystem"
	BlobAzure      = "azblob"
	BlobMemory     = "memory"
)

// DefaultConfigYAML is written by `adda-cli config init`
const DefaultConfigYAML = `# adda configuration
devops:
  organization_url: https://dev.azure.com/your-organization

jira:
  enabled: false
  base_url: https://your-site.atlassian.net

# Leave empty to read secrets from the environment
key_vault_url: ""

table:
  backend: sqlite # sqlite | aztables | memory
  # sqlite_path: ~/.local/share/adda/projects.db
  # table_name: DevOpsProjectsData

blob:
  backend: filesystem # filesystem | azblob | memory
  root: ~/.local/share/adda/blobs

schedule: "0 */5 * * * *"

export:
  iteration_node: "2023"
  depth: 5
  batch_size: 200
  concurrency: 4

log:
  level: info
  format: text
`

// Config is the whole adda configuration
type Config struct {
	DevOps      DevOpsConfig `yaml:"devops"`
	Jira        JiraConfig   `yaml:"jira"`
	KeyVaultURL string       `yaml:"key_vault_url"`
	Table       TableConfig  `yaml:"table"`
	Blob        BlobConfig   `yaml:"blob"`
	Schedule    string       `yaml:"schedule"`
	Export      ExportConfig `yaml:"export"`
	Log         LogConfig    `yaml:"log"`
}

type DevOpsConfig struct {
	OrganizationURL string `yaml:"organization_url"`
}

type JiraConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// TableConfig selects where project rows live
type TableConfig struct {
	Backend          string `yaml:"backend"`
	SQLitePath       string `yaml:"sqlite_path,omitempty"`
	TableName        string `yaml:"table_name,omitempty"`
	ConnectionString string `yaml:"connection_string,omitempty"`
}

// BlobConfig selects where export blobs and run reports are written
type BlobConfig struct {
	Backend          string `yaml:"backend"`
	Root             string `yaml:"root,omitempty"`
	ConnectionString string `yaml:"connection_string,omitempty"`
	AccountURL       string `yaml:"account_url,omitempty"`
}

type ExportConfig struct {
	IterationNode string `yaml:"iteration_node"`
	Depth         int    `yaml:"depth"`
	BatchSize     int    `yaml:"batch_size"`
	Concurrency   int    `yaml:"concurrency"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Table: TableConfig{
			Backend:   BackendSQLite,
			TableName: aztables.DefaultTableName,
		},
		Blob: BlobConfig{
			Backend: BlobFilesystem,
			Root:    defaultExportRoot,
		},
		Schedule: orchestrator.DefaultSchedule,
		Export: ExportConfig{
			IterationNode: "2023",
			Depth:         5,
			BatchSize:     defaultExportBatchSize,
			Concurrency:   4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns $ADDA_CONFIG, or config.yaml under the XDG config directory
func DefaultPath() string {
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return defaultConfigFileName
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "adda", defaultConfigFileName)
}

// Load reads path (DefaultPath when empty) over the defaults, then applies
// the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	return cfg, nil
}

// Write saves DefaultConfigYAML to path unless a file is already there
func Write(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.DevOps.OrganizationURL, EnvOrganizationURL)
	set(&c.Jira.BaseURL, EnvJiraURL)
	set(&c.KeyVaultURL, EnvKeyVaultURL)
	set(&c.Table.ConnectionString, EnvStorageConnection)
	set(&c.Log.Level, EnvLogLevel)

	// The Functions app shared one storage account for tables and blobs
	if c.Blob.ConnectionString == "" {
		c.Blob.ConnectionString = c.Table.ConnectionString
	}
}

func (c *Config) applyDefaults() {
	c.Table.Backend = strings.ToLower(strings.TrimSpace(c.Table.Backend))
	c.Blob.Backend = strings.ToLower(strings.TrimSpace(c.Blob.Backend))
	if c.Table.Backend == "" {
		c.Table.Backend = BackendSQLite
	}
	if c.Table.TableName == "" {
		c.Table.TableName = aztables.DefaultTableName
	}
	if c.Blob.Backend == "" {
		c.Blob.Backend = BlobFilesystem
	}
	if c.Blob.Root == "" {
		c.Blob.Root = defaultExportRoot
	}
	if c.Schedule == "" {
		c.Schedule = orchestrator.DefaultSchedule
	}
	if c.Export.IterationNode == "" {
		c.Export.IterationNode = "2023"
	}
	if c.Export.Concurrency <= 0 {
		c.Export.Concurrency = 4
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	if c.DevOps.OrganizationURL == "" {
		return fmt.Errorf("config: devops.organization_url is required (or set %s)", EnvOrganizationURL)
	}
	if err := validateURL(c.DevOps.OrganizationURL); err != nil {
		return fmt.Errorf("config: devops.organization_url: %w", err)
	}
	if c.Jira.Enabled {
		if err := validateURL(c.Jira.BaseURL); err != nil {
			return fmt.Errorf("config: jira.base_url: %w", err)
		}
	}
	if c.KeyVaultURL != "" {
		if err := validateURL(c.KeyVaultURL); err != nil {
			return fmt.Errorf("config: key_vault_url: %w", err)
		}
	}
	if _, err := orchestrator.ParseSchedule(c.Schedule); err != nil {
		return fmt.Errorf("config: schedule: %w", err)
	}

	switch c.Table.Backend {
	case BackendSQLite, BackendMemory:
	case BackendAzTables:
		if c.Table.ConnectionString == "" {
			return fmt.Errorf("config: table backend %s needs a connection string (set %s)", BackendAzTables, EnvStorageConnection)
		}
	default:
		return fmt.Errorf("config: unknown table backend %q", c.Table.Backend)
	}

	switch c.Blob.Backend {
	case BlobFilesystem, BlobMemory:
	case BlobAzure:
		if c.Blob.ConnectionString == "" && c.Blob.AccountURL == "" {
			return fmt.Errorf("config: blob backend %s needs a connection string or account_url", BlobAzure)
		}
	default:
		return fmt.Errorf("config: unknown blob backend %q", c.Blob.Backend)
	}

	if c.Export.Depth <= 0 {
		return fmt.Errorf("config: export.depth must be at least 1, got %d", c.Export.Depth)
	}
	if c.Export.BatchSize < 1 || c.Export.BatchSize > maxExportBatchSize {
		return fmt.Errorf("config: export.batch_size must be between 1 and %d, got %d", maxExportBatchSize, c.Export.BatchSize)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
