package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvOrganizationURL, EnvJiraURL, EnvKeyVaultURL, EnvStorageConnection, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Table.Backend != BackendSQLite {
		t.Errorf("expected table backend %s, got %s", BackendSQLite, cfg.Table.Backend)
	}
	if cfg.Table.TableName != "DevOpsProjectsData" {
		t.Errorf("expected table name DevOpsProjectsData, got %s", cfg.Table.TableName)
	}
	if cfg.Schedule != "0 */5 * * * *" {
		t.Errorf("expected default schedule, got %q", cfg.Schedule)
	}
	if cfg.Export.IterationNode != "2023" || cfg.Export.Depth != 5 || cfg.Export.BatchSize != 200 {
		t.Errorf("unexpected export defaults: %+v", cfg.Export)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
devops:
  organization_url: https://dev.azure.com/contoso
table:
  backend: Memory
export:
  iteration_node: "2024"
  batch_size: 50
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DevOps.OrganizationURL != "https://dev.azure.com/contoso" {
		t.Errorf("expected organization url from file, got %s", cfg.DevOps.OrganizationURL)
	}
	if cfg.Table.Backend != BackendMemory {
		t.Errorf("expected backend normalised to memory, got %s", cfg.Table.Backend)
	}
	if cfg.Export.IterationNode != "2024" || cfg.Export.BatchSize != 50 {
		t.Errorf("unexpected export settings: %+v", cfg.Export)
	}
	if cfg.Export.Depth != 5 {
		t.Errorf("expected omitted depth to keep default 5, got %d", cfg.Export.Depth)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log settings: %+v", cfg.Log)
	}
}

func TestLoad_EnvironmentWins(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
devops:
  organization_url: https://dev.azure.com/from-file
log:
  level: info
`)
	t.Setenv(EnvOrganizationURL, "https://dev.azure.com/from-env")
	t.Setenv(EnvStorageConnection, "UseDevelopmentStorage=true")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DevOps.OrganizationURL != "https://dev.azure.com/from-env" {
		t.Errorf("expected env organization url, got %s", cfg.DevOps.OrganizationURL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected env log level, got %s", cfg.Log.Level)
	}
	if cfg.Table.ConnectionString != "UseDevelopmentStorage=true" {
		t.Errorf("expected table connection string from env, got %q", cfg.Table.ConnectionString)
	}
	if cfg.Blob.ConnectionString != cfg.Table.ConnectionString {
		t.Errorf("expected blob connection string to follow the table one, got %q", cfg.Blob.ConnectionString)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "devops: [unterminated")

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.DevOps.OrganizationURL = "https://dev.azure.com/contoso"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing organization", func(c *Config) { c.DevOps.OrganizationURL = "" }, "organization_url is required"},
		{"organization not a url", func(c *Config) { c.DevOps.OrganizationURL = "contoso" }, "organization_url"},
		{"jira enabled without url", func(c *Config) { c.Jira.Enabled = true }, "jira.base_url"},
		{"bad schedule", func(c *Config) { c.Schedule = "every five minutes" }, "schedule"},
		{"five field cron rejected", func(c *Config) { c.Schedule = "*/5 * * * *" }, "schedule"},
		{"descriptor accepted", func(c *Config) { c.Schedule = "@hourly" }, ""},
		{"unknown table backend", func(c *Config) { c.Table.Backend = "cosmos" }, "table backend"},
		{"aztables without connection", func(c *Config) { c.Table.Backend = BackendAzTables }, "connection string"},
		{"azblob with account url", func(c *Config) {
			c.Blob.Backend = BlobAzure
			c.Blob.AccountURL = "https://acct.blob.core.windows.net"
		}, ""},
		{"azblob without target", func(c *Config) { c.Blob.Backend = BlobAzure }, "blob backend"},
		{"zero depth", func(c *Config) { c.Export.Depth = 0 }, "depth"},
		{"batch too large", func(c *Config) { c.Export.BatchSize = 201 }, "batch_size"},
		{"batch zero", func(c *Config) { c.Export.BatchSize = 0 }, "batch_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWrite_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := Write(path); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := Write(path); err == nil {
		t.Error("expected second write to fail")
	}

	clearEnv(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected the written template to validate, got %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != filepath.Join("/tmp/xdg", "adda", "config.yaml") {
		t.Errorf("unexpected default path %s", got)
	}

	t.Setenv(EnvConfigPath, "/etc/adda.yaml")
	if got := DefaultPath(); got != "/etc/adda.yaml" {
		t.Errorf("expected env path, got %s", got)
	}
}
