package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadConfigParsesFile(t *testing.T) {
	path := writeConfigFile(t, `{"server":{"name":"berrymart","host":"127.0.0.1","http_port":9001}}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.HTTPPort != 9001 || cfg.Server.Host != "127.0.0.1" {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoadConfigReturnsFreshInstance(t *testing.T) {
	a := writeConfigFile(t, `{"server":{"http_port":9001}}`)
	b := writeConfigFile(t, `{"server":{"http_port":9002}}`)

	cfgA, err := LoadConfig(a)
	if err != nil {
		t.Fatalf("LoadConfig a: %v", err)
	}
	cfgB, err := LoadConfig(b)
	if err != nil {
		t.Fatalf("LoadConfig b: %v", err)
	}
	// 每次加载都是独立实例，后一次不应吃到前一次的缓存
	if cfgA.Server.HTTPPort != 9001 || cfgB.Server.HTTPPort != 9002 {
		t.Fatalf("want 9001/9002, got %d/%d", cfgA.Server.HTTPPort, cfgB.Server.HTTPPort)
	}
	if cfgA == cfgB {
		t.Fatal("loads must not share one instance")
	}
}

func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Name != "berrymart" || cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFromConsulKVRequiresKey(t *testing.T) {
	if _, err := LoadConfigFromConsulKV("localhost", 8500, ""); err == nil {
		t.Fatal("want error for empty kv key")
	}
}
