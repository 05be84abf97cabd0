package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
provider:
  secretId: "id-1"
  secretKey: "key-1"
  baseUrl: "https://sandbox.example.com/api/v2"
  debugHttp: true
quota:
  limitPerDay: 10
server:
  listenAddr: ":9090"
databasePath: "/var/lib/banksync/banksync.db"
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Provider.SecretId != "id-1" {
		t.Errorf("secretId = %q", config.Provider.SecretId)
	}
	if config.Provider.BaseURL != "https://sandbox.example.com/api/v2" {
		t.Errorf("baseUrl = %q", config.Provider.BaseURL)
	}
	if !config.Provider.DebugHTTP {
		t.Error("debugHttp should be true")
	}
	if config.Quota.LimitPerDay != 10 {
		t.Errorf("limitPerDay = %d", config.Quota.LimitPerDay)
	}
	if config.Server.ListenAddr != ":9090" {
		t.Errorf("listenAddr = %q", config.Server.ListenAddr)
	}
	if config.DatabasePath != "/var/lib/banksync/banksync.db" {
		t.Errorf("databasePath = %q", config.DatabasePath)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "provider: [not: a: mapping")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestInitGlobalConfig(t *testing.T) {
	path := writeConfigFile(t, `
provider:
  secretId: "id-global"
  secretKey: "key-global"
quota:
  limitPerDay: 4
`)

	if err := InitGlobalConfig(path); err != nil {
		t.Fatalf("InitGlobalConfig failed: %v", err)
	}
	t.Cleanup(resetGlobalConfig)

	secretId, secretKey, err := GetProviderCredentials()
	if err != nil {
		t.Fatalf("GetProviderCredentials failed: %v", err)
	}
	if secretId != "id-global" || secretKey != "key-global" {
		t.Errorf("credentials = %q/%q", secretId, secretKey)
	}

	if limit := GetQuotaLimit(); limit != 4 {
		t.Errorf("GetQuotaLimit() = %d", limit)
	}
}

func TestGetProviderCredentialsMissing(t *testing.T) {
	path := writeConfigFile(t, `
quota:
  limitPerDay: 4
`)

	if err := InitGlobalConfig(path); err != nil {
		t.Fatalf("InitGlobalConfig failed: %v", err)
	}
	t.Cleanup(resetGlobalConfig)

	if _, _, err := GetProviderCredentials(); err == nil {
		t.Fatal("expected an error when credentials are unset")
	}
}

func TestDefaultsWhenUnset(t *testing.T) {
	path := writeConfigFile(t, `
provider:
  secretId: "id-1"
  secretKey: "key-1"
`)

	if err := InitGlobalConfig(path); err != nil {
		t.Fatalf("InitGlobalConfig failed: %v", err)
	}
	t.Cleanup(resetGlobalConfig)

	if limit := GetQuotaLimit(); limit != 4 {
		t.Errorf("GetQuotaLimit() default = %d, want 4", limit)
	}
	if addr := GetListenAddr(); addr != ":8080" {
		t.Errorf("GetListenAddr() default = %q, want :8080", addr)
	}
	if dbPath := GetDatabasePath(); dbPath != "" {
		t.Errorf("GetDatabasePath() default = %q, want empty", dbPath)
	}
}

func resetGlobalConfig() {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = nil
	configLoaded = false
}
