package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type Auth struct {
	// Comma-separated API keys. Empty means the tier is open (local dev).
	PublicKeys string `mapstructure:"public_keys"`
	AdminKeys  string `mapstructure:"admin_keys"`

	PublicRPM   int `mapstructure:"public_rpm"`
	PublicBurst int `mapstructure:"public_burst"`
	AdminRPM    int `mapstructure:"admin_rpm"`
	AdminBurst  int `mapstructure:"admin_burst"`
}

type Probes struct {
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	SSLTimeout        time.Duration `mapstructure:"ssl_timeout"`
	DNSTimeout        time.Duration `mapstructure:"dns_timeout"`
	ScreenshotTimeout time.Duration `mapstructure:"screenshot_timeout"`
	PageInfoTimeout   time.Duration `mapstructure:"pageinfo_timeout"`

	UserAgent          string        `mapstructure:"user_agent"`
	RetryAttempts      int           `mapstructure:"retry_attempts"`
	RetryBackoff       time.Duration `mapstructure:"retry_backoff"`
	ScreenshotEndpoint string        `mapstructure:"screenshot_endpoint"`
}

type Sweep struct {
	Interval    time.Duration `mapstructure:"interval"`
	Jitter      time.Duration `mapstructure:"jitter"`
	Concurrency int           `mapstructure:"concurrency"`
}

type Alerts struct {
	SlackWebhook string        `mapstructure:"slack_webhook"`
	Cooldown     time.Duration `mapstructure:"cooldown"`
	OnRecovery   bool          `mapstructure:"on_recovery"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type Config struct {
	Server Server `mapstructure:"server"`
	Auth   Auth   `mapstructure:"auth"`
	Probes Probes `mapstructure:"probes"`
	Sweep  Sweep  `mapstructure:"sweep"`
	Alerts Alerts `mapstructure:"alerts"`

	LogDir      string `mapstructure:"log_dir"`
	DatabaseURL string `mapstructure:"database_url"`
}

// Load reads an optional YAML file and overlays environment variables.
// Every key maps to an env var with dots replaced by underscores, e.g.
// server.addr -> SERVER_ADDR, probes.http_timeout -> PROBES_HTTP_TIMEOUT.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("auth.public_keys", "")
	v.SetDefault("auth.admin_keys", "")
	v.SetDefault("auth.public_rpm", 120)
	v.SetDefault("auth.public_burst", 60)
	v.SetDefault("auth.admin_rpm", 60)
	v.SetDefault("auth.admin_burst", 20)

	v.SetDefault("probes.http_timeout", "10s")
	v.SetDefault("probes.ssl_timeout", "10s")
	v.SetDefault("probes.dns_timeout", "5s")
	v.SetDefault("probes.screenshot_timeout", "30s")
	v.SetDefault("probes.pageinfo_timeout", "10s")
	v.SetDefault("probes.user_agent", "sitemonitor/1.0")
	v.SetDefault("probes.retry_attempts", 2)
	v.SetDefault("probes.retry_backoff", "300ms")
	v.SetDefault("probes.screenshot_endpoint", "")

	v.SetDefault("sweep.interval", "60s")
	v.SetDefault("sweep.jitter", "5s")
	v.SetDefault("sweep.concurrency", 8)

	v.SetDefault("alerts.slack_webhook", "")
	v.SetDefault("alerts.cooldown", "15m")
	v.SetDefault("alerts.on_recovery", true)
	v.SetDefault("alerts.poll_interval", "30s")

	v.SetDefault("log_dir", "logs")
	v.SetDefault("database_url", "")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SplitKeys turns a comma-separated key list into a slice, dropping blanks.
func SplitKeys(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
