package config

import (
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime settings of the bond daemon.
type Config struct {
	ListenAddress string `yaml:"listen"`
	Environment   string `yaml:"environment"`
	DataDir       string `yaml:"data_dir"`
	// Deployment is the TOML file applied to an empty data directory.
	Deployment string `yaml:"deployment"`
	// Paused lists contract kinds ("bond", "treasury") whose state changing
	// operations are halted.
	Paused    []string        `yaml:"paused"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// AuthConfig configures HMAC bearer tokens for state changing routes. The
// token subject is the account the call executes as.
type AuthConfig struct {
	HMACSecret    string        `yaml:"hmac_secret"`
	HMACSecretEnv string        `yaml:"hmac_secret_env"`
	Issuer        string        `yaml:"issuer"`
	Audience      string        `yaml:"audience"`
	ClockSkew     time.Duration `yaml:"clock_skew"`
}

type RateLimitConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
	// TrustedProxies are the CIDRs or addresses of reverse proxies allowed to
	// name the client through X-Real-IP or X-Forwarded-For. When empty the
	// peer address is the client.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type TelemetryConfig struct {
	Endpoint    string            `yaml:"endpoint"`
	Insecure    bool              `yaml:"insecure"`
	Headers     map[string]string `yaml:"headers"`
	Traces      bool              `yaml:"traces"`
	Metrics     bool              `yaml:"metrics"`
	SampleRatio float64           `yaml:"sample_ratio"`
}

type TimeoutConfig struct {
	Read     time.Duration `yaml:"read"`
	Write    time.Duration `yaml:"write"`
	Idle     time.Duration `yaml:"idle"`
	Shutdown time.Duration `yaml:"shutdown"`
}

// Default returns the settings used for keys the file leaves out.
func Default() Config {
	return Config{
		ListenAddress: ":8480",
		DataDir:       "./bondd-data",
		RateLimit:     RateLimitConfig{RequestsPerMinute: 120, Burst: 20},
		Auth:          AuthConfig{ClockSkew: 2 * time.Minute},
		Log:           LogConfig{Level: "info"},
		Timeouts: TimeoutConfig{
			Read:     15 * time.Second,
			Write:    30 * time.Second,
			Idle:     60 * time.Second,
			Shutdown: 10 * time.Second,
		},
	}
}

// Load reads the YAML configuration from disk.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Config{}, fmt.Errorf("config path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.resolveSecret(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = def.ListenAddress
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = def.DataDir
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		c.RateLimit.RequestsPerMinute = def.RateLimit.RequestsPerMinute
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = def.RateLimit.Burst
	}
	if c.Auth.ClockSkew <= 0 {
		c.Auth.ClockSkew = def.Auth.ClockSkew
	}
	if c.Timeouts.Read <= 0 {
		c.Timeouts.Read = def.Timeouts.Read
	}
	if c.Timeouts.Write <= 0 {
		c.Timeouts.Write = def.Timeouts.Write
	}
	if c.Timeouts.Idle <= 0 {
		c.Timeouts.Idle = def.Timeouts.Idle
	}
	if c.Timeouts.Shutdown <= 0 {
		c.Timeouts.Shutdown = def.Timeouts.Shutdown
	}
}

func (c *Config) resolveSecret(getenv func(string) string) error {
	name := strings.TrimSpace(c.Auth.HMACSecretEnv)
	if name == "" {
		return nil
	}
	value := strings.TrimSpace(getenv(name))
	if value == "" {
		return fmt.Errorf("auth: environment variable %s is empty", name)
	}
	c.Auth.HMACSecret = value
	return nil
}

// Validate rejects configurations the daemon cannot serve safely.
func (c Config) Validate() error {
	if len(strings.TrimSpace(c.Auth.HMACSecret)) < 32 {
		return fmt.Errorf("auth: hmac_secret must be at least 32 bytes")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry: sample_ratio must be within [0,1]")
	}
	for _, entry := range c.RateLimit.TrustedProxies {
		if !validProxy(strings.TrimSpace(entry)) {
			return fmt.Errorf("rate_limit: invalid trusted proxy %q", entry)
		}
	}
	return nil
}

func validProxy(entry string) bool {
	if strings.Contains(entry, "/") {
		_, err := netip.ParsePrefix(entry)
		return err == nil
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}
