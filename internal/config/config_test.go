package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestConfigAccessors(t *testing.T) {
	v := viper.New()
	v.Set("server.host", "127.0.0.1")
	v.Set("server.port", 8000)
	v.Set("source.demo_mode", true)
	v.Set("scheduler.interval", "24h")
	cfg := New(v)

	if got := cfg.GetString("server.host"); got != "127.0.0.1" {
		t.Errorf("GetString = %q, want %q", got, "127.0.0.1")
	}
	if got := cfg.GetInt("server.port"); got != 8000 {
		t.Errorf("GetInt = %d, want 8000", got)
	}
	if !cfg.GetBool("source.demo_mode") {
		t.Error("GetBool = false, want true")
	}
	if got := cfg.GetDuration("scheduler.interval"); got != 24*time.Hour {
		t.Errorf("GetDuration = %v, want 24h", got)
	}
	if !cfg.IsSet("server.host") {
		t.Error("IsSet('server.host') = false, want true")
	}
	if cfg.IsSet("missing") {
		t.Error("IsSet('missing') = true, want false")
	}
}

func TestConfigSub(t *testing.T) {
	v := viper.New()
	v.Set("source.tenant_id", "tenant-1")
	v.Set("source.mock_seed", 42)
	cfg := New(v)

	sub := cfg.Sub("source")
	if sub == nil {
		t.Fatal("Sub('source') = nil")
	}
	if got := sub.GetString("tenant_id"); got != "tenant-1" {
		t.Errorf("sub.GetString = %q, want %q", got, "tenant-1")
	}
	if got := sub.GetInt("mock_seed"); got != 42 {
		t.Errorf("sub.GetInt = %d, want 42", got)
	}

	if missing := cfg.Sub("nonexistent"); missing == nil {
		t.Fatal("Sub('nonexistent') should return empty Config, not nil")
	}
}

func TestConfigUnmarshal(t *testing.T) {
	v := viper.New()
	v.Set("dir", "reports")
	v.Set("keep", 10)
	cfg := New(v)

	var target struct {
		Dir  string `mapstructure:"dir"`
		Keep int    `mapstructure:"keep"`
	}
	if err := cfg.Unmarshal(&target); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if target.Dir != "reports" {
		t.Errorf("Dir = %q, want %q", target.Dir, "reports")
	}
	if target.Keep != 10 {
		t.Errorf("Keep = %d, want 10", target.Keep)
	}
}

func TestNilConfig(t *testing.T) {
	cfg := New(nil)
	if got := cfg.GetString("key"); got != "" {
		t.Errorf("nil viper GetString() = %q, want empty", got)
	}
	if cfg.GetBool("key") {
		t.Error("nil viper GetBool() = true, want false")
	}
	if sub := cfg.Sub("key"); sub == nil {
		t.Error("nil viper Sub() should not return nil")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fleetgauge.yaml")
	data := []byte("server:\n  port: 9000\nsource:\n  demo_mode: true\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.GetInt("server.port"); got != 9000 {
		t.Errorf("server.port = %d, want 9000", got)
	}
	if !cfg.GetBool("source.demo_mode") {
		t.Error("source.demo_mode = false, want true")
	}
	// Defaults still apply for keys the file omits.
	if got := cfg.GetString("reports.dir"); got != "reports" {
		t.Errorf("reports.dir = %q, want default %q", got, "reports")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing explicit file should error")
	}
}
