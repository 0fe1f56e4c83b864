package confloader

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type testConfig struct {
	Proxy struct {
		Host    string `koanf:"host"`
		Port    int    `koanf:"port"`
		KeyFile string `koanf:"key_file"`
	} `koanf:"proxy"`
	Backend struct {
		TLS      bool `koanf:"tls"`
		NoVerify bool `koanf:"no_verify"`
	} `koanf:"backend"`
	Security struct {
		AllowedOrigins []string `koanf:"allowed_origins"`
	} `koanf:"security"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func newDefaults() *testConfig {
	cfg := &testConfig{}
	cfg.Proxy.Host = "127.0.0.1"
	cfg.Proxy.Port = 5675
	cfg.Log.Level = "info"
	return cfg
}

var testLegacy = map[string]LegacyVar{
	"TEST_LEGACY_PORT":      {Key: "proxy.port"},
	"TEST_LEGACY_KEY":       {Key: "proxy.key_file"},
	"TEST_LEGACY_NO_VERIFY": {Key: "backend.no_verify", Bool: true},
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load")
	}
}

func TestLoader_Load_DefaultsKept(t *testing.T) {
	cfg := newDefaults()
	if err := NewLoader(WithEnvPrefix("SGTEST_EMPTY_")).Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Proxy.Host != "127.0.0.1" || cfg.Proxy.Port != 5675 || cfg.Log.Level != "info" {
		t.Errorf("defaults changed: %+v", cfg)
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
proxy:
  host: "0.0.0.0"
  port: 8443
backend:
  tls: true
security:
  allowed_origins: ["https://a.example", "https://b.example"]
`)

	cfg := newDefaults()
	l := NewLoader(WithConfigFile(path), WithEnvPrefix("SGTEST_EMPTY_"))
	if err := l.Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Proxy.Host != "0.0.0.0" || cfg.Proxy.Port != 8443 {
		t.Errorf("proxy = %s:%d", cfg.Proxy.Host, cfg.Proxy.Port)
	}
	if !cfg.Backend.TLS {
		t.Error("backend.tls should be true")
	}
	if len(cfg.Security.AllowedOrigins) != 2 {
		t.Errorf("allowed_origins = %v", cfg.Security.AllowedOrigins)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log.level = %q, want default", cfg.Log.Level)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("SGTEST_PROXY__PORT", "9000")
	t.Setenv("SGTEST_PROXY__KEY_FILE", "/etc/sessgate/key.pem")
	t.Setenv("SGTEST_LOG__LEVEL", "debug")
	t.Setenv("SGTEST_SECURITY__ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := newDefaults()
	l := NewLoader(WithEnvPrefix("SGTEST_"), WithListKeys("security.allowed_origins"))
	if err := l.Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Proxy.Port != 9000 {
		t.Errorf("proxy.port = %d, want 9000", cfg.Proxy.Port)
	}
	if cfg.Proxy.KeyFile != "/etc/sessgate/key.pem" {
		t.Errorf("proxy.key_file = %q", cfg.Proxy.KeyFile)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want debug", cfg.Log.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Security.AllowedOrigins, want) {
		t.Errorf("allowed_origins = %v, want %v", cfg.Security.AllowedOrigins, want)
	}
}

func TestLoader_LoadLegacyEnv(t *testing.T) {
	t.Setenv("TEST_LEGACY_PORT", "7000")
	t.Setenv("TEST_LEGACY_KEY", "")
	t.Setenv("TEST_LEGACY_NO_VERIFY", "0")

	cfg := newDefaults()
	l := NewLoader(WithEnvPrefix("SGTEST_EMPTY_"), WithLegacyEnv(testLegacy))
	if err := l.Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Proxy.Port != 7000 {
		t.Errorf("proxy.port = %d, want 7000", cfg.Proxy.Port)
	}
	if cfg.Proxy.KeyFile != "" {
		t.Errorf("empty legacy value should be ignored, got %q", cfg.Proxy.KeyFile)
	}
	// Any non-empty value of a legacy flag variable is true, even "0".
	if !cfg.Backend.NoVerify {
		t.Error("backend.no_verify should be true for a non-empty legacy flag")
	}
}

func TestLoader_Precedence(t *testing.T) {
	path := writeConfig(t, "proxy:\n  port: 1111\n")
	t.Setenv("SGPREC_PROXY__PORT", "2222")
	t.Setenv("TEST_LEGACY_PORT", "3333")

	cfg := newDefaults()
	l := NewLoader(WithConfigFile(path), WithEnvPrefix("SGPREC_"), WithLegacyEnv(testLegacy))
	if err := l.Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Proxy.Port != 3333 {
		t.Errorf("proxy.port = %d, legacy env should win", cfg.Proxy.Port)
	}

	if err := l.LoadMap(map[string]any{"proxy.port": 4444}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if err := l.Unmarshal(cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Proxy.Port != 4444 {
		t.Errorf("proxy.port = %d, map override should win", cfg.Proxy.Port)
	}
}

func TestLoader_LoadMap_Nested(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"log.level": "warn", "proxy": map[string]any{"host": "::1"}}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if got := l.GetString("log.level"); got != "warn" {
		t.Errorf("log.level = %q, want warn", got)
	}
	if got := l.GetString("proxy.host"); got != "::1" {
		t.Errorf("proxy.host = %q, want ::1", got)
	}
}

func TestMapProvider_ReadBytes(t *testing.T) {
	if _, err := (mapProvider{}).ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v", err)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , ,b ", []string{"a", "b"}},
		{",", []string{}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
