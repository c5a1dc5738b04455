package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fakeEnv(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestResolveBindAddrDefault(t *testing.T) {
	// Unset
	addr := ResolveBindAddr(fakeEnv(map[string]string{}))
	if addr != DefaultBindAddr {
		t.Errorf("Unset %s should resolve to %s, got %s", EnvBindAddr, DefaultBindAddr, addr)
	}

	// Set but empty behaves like unset
	addr = ResolveBindAddr(fakeEnv(map[string]string{EnvBindAddr: ""}))
	if addr != DefaultBindAddr {
		t.Errorf("Empty %s should resolve to %s, got %s", EnvBindAddr, DefaultBindAddr, addr)
	}
}

func TestResolveBindAddrVerbatim(t *testing.T) {
	// Values are passed through exactly, including ones that look wrong.
	// Validation is deliberately not this component's job.
	values := []string{
		"127.0.0.1:3030",
		"0.0.0.0:8545",
		"localhost",
		" 0.0.0.0:3030 ",
		"not-an-address",
	}

	for _, want := range values {
		got := ResolveBindAddr(fakeEnv(map[string]string{EnvBindAddr: want}))
		if got != want {
			t.Errorf("ResolveBindAddr(%q) = %q, want verbatim pass-through", want, got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv(EnvBindAddr)
	os.Unsetenv(EnvTarget)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BindAddr != DefaultBindAddr {
		t.Errorf("BindAddr = %s, want %s", cfg.BindAddr, DefaultBindAddr)
	}
	if cfg.Target != DefaultTarget {
		t.Errorf("Target = %s, want %s", cfg.Target, DefaultTarget)
	}
	if cfg.ProbeInterval != DefaultProbeInterval {
		t.Errorf("ProbeInterval = %v, want %v", cfg.ProbeInterval, DefaultProbeInterval)
	}
	if cfg.ProbeTimeout != DefaultProbeTimeout {
		t.Errorf("ProbeTimeout = %v, want %v", cfg.ProbeTimeout, DefaultProbeTimeout)
	}
	if cfg.ProbeGrace != DefaultProbeGrace {
		t.Errorf("ProbeGrace = %v, want %v", cfg.ProbeGrace, DefaultProbeGrace)
	}
	if cfg.ProbeMaxFailures != DefaultProbeMaxFailures {
		t.Errorf("ProbeMaxFailures = %d, want %d", cfg.ProbeMaxFailures, DefaultProbeMaxFailures)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv(EnvBindAddr, "127.0.0.1:4040")
	os.Setenv(EnvTarget, "/usr/local/bin/kakarot-rpc")
	defer os.Unsetenv(EnvBindAddr)
	defer os.Unsetenv(EnvTarget)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BindAddr != "127.0.0.1:4040" {
		t.Errorf("BindAddr = %s, want 127.0.0.1:4040", cfg.BindAddr)
	}
	if cfg.Target != "/usr/local/bin/kakarot-rpc" {
		t.Errorf("Target = %s, want /usr/local/bin/kakarot-rpc", cfg.Target)
	}
}

func TestLoadEmptyEnvFallsBackToDefault(t *testing.T) {
	os.Setenv(EnvBindAddr, "")
	defer os.Unsetenv(EnvBindAddr)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BindAddr != DefaultBindAddr {
		t.Errorf("Empty env BindAddr = %s, want default %s", cfg.BindAddr, DefaultBindAddr)
	}
}

func TestLoadConfigFile(t *testing.T) {
	os.Unsetenv(EnvBindAddr)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("bind_addr: 10.0.0.1:3030\nprobe_interval: 10s\nprobe_max_failures: 3\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BindAddr != "10.0.0.1:3030" {
		t.Errorf("BindAddr = %s, want 10.0.0.1:3030", cfg.BindAddr)
	}
	if cfg.ProbeInterval != 10*time.Second {
		t.Errorf("ProbeInterval = %v, want 10s", cfg.ProbeInterval)
	}
	if cfg.ProbeMaxFailures != 3 {
		t.Errorf("ProbeMaxFailures = %d, want 3", cfg.ProbeMaxFailures)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load with a missing explicit config file should fail")
	}
}
