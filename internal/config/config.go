package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type VenueCfg struct {
	RestURL    string `yaml:"rest_url"`
	FuturesURL string `yaml:"futures_url"`
	WsURL      string `yaml:"ws_url"`
}

type RedisCfg struct {
	Addr      string `yaml:"addr"`
	DB        int    `yaml:"db"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Stream    string `yaml:"stream"`
	ActiveKey string `yaml:"active_key"`
	SnapNS    string `yaml:"snap_ns"`
}

type S3Cfg struct {
	Endpoint       string `yaml:"endpoint"`
	Region         string `yaml:"region"`
	Bucket         string `yaml:"bucket"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type HistoryCfg struct {
	Backend        string `yaml:"backend"` // "file" or "s3"
	Dir            string `yaml:"dir"`
	MaxPerFile     int    `yaml:"max_per_file"`
	FlushEvery     int    `yaml:"flush_every"`
	IntervalMs     int    `yaml:"interval_ms"`
	MaxDurationMin int    `yaml:"max_duration_min"`
	S3             S3Cfg  `yaml:"s3"`
}

type Config struct {
	Pairs  []string `yaml:"pairs"`
	Venues []string `yaml:"venues"`
	Depth  int      `yaml:"depth"`

	HTTP struct {
		TimeoutMs   int `yaml:"timeout_ms"`
		Retries     int `yaml:"retries"`
		RetryWaitMs int `yaml:"retry_wait_ms"`
	} `yaml:"http"`

	Binance VenueCfg `yaml:"binance"`
	OKX     VenueCfg `yaml:"okx"`
	KuCoin  VenueCfg `yaml:"kucoin"`
	Bitmart VenueCfg `yaml:"bitmart"`

	Redis   RedisCfg   `yaml:"redis"`
	History HistoryCfg `yaml:"history"`

	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`

	Dash struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"dash"`

	Timings struct {
		PollIntervalMs int `yaml:"poll_interval_ms"`
	} `yaml:"timings"`
}

// Load reads the yaml config, overlays secrets from the environment (an
// optional .env is read first) and fills defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// Secrets never live in the yaml file.
	if v := os.Getenv("XETRADE_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("XETRADE_S3_ACCESS_KEY"); v != "" {
		c.History.S3.AccessKey = v
	}
	if v := os.Getenv("XETRADE_S3_SECRET_KEY"); v != "" {
		c.History.S3.SecretKey = v
	}

	if len(c.Pairs) == 0 {
		c.Pairs = []string{"BTC-USDT", "ETH-USDT"}
	}
	if len(c.Venues) == 0 {
		c.Venues = []string{"binance", "okx", "kucoin", "bitmart"}
	}
	if c.Depth == 0 {
		c.Depth = 100
	}
	if c.HTTP.TimeoutMs == 0 {
		c.HTTP.TimeoutMs = 6000
	}
	if c.HTTP.Retries == 0 {
		c.HTTP.Retries = 2
	}
	if c.HTTP.RetryWaitMs == 0 {
		c.HTTP.RetryWaitMs = 250
	}
	if c.Timings.PollIntervalMs == 0 {
		c.Timings.PollIntervalMs = 1000
	}
	if c.History.Backend == "" {
		c.History.Backend = "file"
	}
	if c.History.Dir == "" {
		c.History.Dir = "./data"
	}
	if c.History.MaxPerFile == 0 {
		c.History.MaxPerFile = 1000
	}
	if c.History.FlushEvery == 0 {
		c.History.FlushEvery = 100
	}
	if c.History.IntervalMs == 0 {
		c.History.IntervalMs = 1000
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = "quote:stream"
	}
	if c.Redis.ActiveKey == "" {
		c.Redis.ActiveKey = "quote:active"
	}
	if c.Redis.SnapNS == "" {
		c.Redis.SnapNS = "quote:snap:"
	}
	return &c, nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMs) * time.Millisecond
}

func (c *Config) HTTPRetryWait() time.Duration {
	return time.Duration(c.HTTP.RetryWaitMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Timings.PollIntervalMs) * time.Millisecond
}

func (c *Config) CaptureInterval() time.Duration {
	return time.Duration(c.History.IntervalMs) * time.Millisecond
}
