package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the wrapped kakarot-rpc service and the liveness probe.
// 3030 is the primary JSON-RPC port; 9545 is the engine API, a secondary
// interface of the wrapped binary that is exposed but never probed.
const (
	DefaultBindAddr = "0.0.0.0:3030"
	EnginePort      = 9545

	DefaultTarget    = "kakarot-rpc"
	DefaultAdminAddr = "0.0.0.0:9091"

	DefaultProbeInterval    = 3 * time.Second
	DefaultProbeTimeout     = 5 * time.Second
	DefaultProbeGrace       = 1 * time.Second
	DefaultProbeMaxFailures = 5
)

// Environment variables recognized by the resolver. KAKAROT_RPC_URL is the
// contract shared with the wrapped binary; the rest are this tool's own.
const (
	EnvBindAddr = "KAKAROT_RPC_URL"
	EnvTarget   = "KAKAROT_INIT_TARGET"
)

// Config holds every resolved setting for the init wrapper
type Config struct {
	// BindAddr is the host:port the wrapped service listens on and the
	// prober targets. Passed through verbatim, never validated: a malformed
	// value surfaces as a startup failure in the wrapped service itself.
	BindAddr string `yaml:"bind_addr"`

	// Target is the executable to supervise
	Target string `yaml:"target"`

	// AdminAddr is where the watch daemon serves /healthz, /status, /metrics
	AdminAddr string `yaml:"admin_addr"`

	ProbeInterval    time.Duration `yaml:"probe_interval"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	ProbeGrace       time.Duration `yaml:"probe_grace"`
	ProbeMaxFailures int           `yaml:"probe_max_failures"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// ResolveBindAddr derives the Bind Address from an environment lookup.
// Unset and empty both mean "use the default"; any other value is used
// verbatim with no normalization.
func ResolveBindAddr(getenv func(string) string) string {
	if addr := getenv(EnvBindAddr); addr != "" {
		return addr
	}
	return DefaultBindAddr
}

// Load resolves configuration from an optional YAML config file and the
// environment. Precedence: flags (bound by the caller) > env > file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("bind_addr", DefaultBindAddr)
	v.SetDefault("target", DefaultTarget)
	v.SetDefault("admin_addr", DefaultAdminAddr)
	v.SetDefault("probe_interval", DefaultProbeInterval)
	v.SetDefault("probe_timeout", DefaultProbeTimeout)
	v.SetDefault("probe_grace", DefaultProbeGrace)
	v.SetDefault("probe_max_failures", DefaultProbeMaxFailures)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.BindEnv("bind_addr", EnvBindAddr)
	v.BindEnv("target", EnvTarget)
	v.BindEnv("admin_addr", "KAKAROT_INIT_ADMIN_ADDR")
	v.BindEnv("probe_interval", "KAKAROT_INIT_PROBE_INTERVAL")
	v.BindEnv("probe_timeout", "KAKAROT_INIT_PROBE_TIMEOUT")
	v.BindEnv("probe_grace", "KAKAROT_INIT_PROBE_GRACE")
	v.BindEnv("probe_max_failures", "KAKAROT_INIT_PROBE_MAX_FAILURES")
	v.BindEnv("log_level", "KAKAROT_INIT_LOG_LEVEL")
	v.BindEnv("log_json", "KAKAROT_INIT_LOG_JSON")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		BindAddr:         v.GetString("bind_addr"),
		Target:           v.GetString("target"),
		AdminAddr:        v.GetString("admin_addr"),
		ProbeInterval:    v.GetDuration("probe_interval"),
		ProbeTimeout:     v.GetDuration("probe_timeout"),
		ProbeGrace:       v.GetDuration("probe_grace"),
		ProbeMaxFailures: v.GetInt("probe_max_failures"),
		LogLevel:         v.GetString("log_level"),
		LogJSON:          v.GetBool("log_json"),
	}

	// An env var exported as an empty string must not override the default
	if cfg.BindAddr == "" {
		cfg.BindAddr = ResolveBindAddr(os.Getenv)
	}
	if cfg.Target == "" {
		cfg.Target = DefaultTarget
	}

	return cfg, nil
}
