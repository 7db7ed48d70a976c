package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type RetryConfig struct {
	MaxRetries     int           `yaml:"maxRetries"`
	InitialBackoff time.Duration `yaml:"initialBackoff"`
	MaxBackoff     time.Duration `yaml:"maxBackoff"`
	BackoffFactor  float64       `yaml:"backoffFactor"`
}

type LedgerConfig struct {
	Endpoints  []string      `yaml:"endpoints" validate:"required"`
	ProgramID  string        `yaml:"programId" validate:"required"`
	Commitment string        `yaml:"commitment" validate:"in:processed,confirmed,finalized"`
	Timeout    time.Duration `yaml:"timeout"`
	Retry      RetryConfig   `yaml:"retry"`
}

type HistoryConfig struct {
	CacheTTL          time.Duration `yaml:"cacheTTL"`
	DefaultRangeHours int           `yaml:"defaultRangeHours"`
	DefaultStepHours  int           `yaml:"defaultStepHours"`
}

type TelemetryConfig struct {
	RpcWindow   time.Duration `yaml:"rpcWindow"`
	TxWindow    time.Duration `yaml:"txWindow"`
	ErrorWindow time.Duration `yaml:"errorWindow"`
}

type RecomputeConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Interval     time.Duration `yaml:"interval"`
	SignerURL    string        `yaml:"signerUrl"`
	SignerToken  string        `yaml:"signerToken"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type WalletConfig struct {
	CacheSize int           `yaml:"cacheSize"`
	CacheTTL  time.Duration `yaml:"cacheTTL"`
}

type StorageConfig struct {
	DbPath string `yaml:"dbPath" validate:"required"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CorsConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Ledger      LedgerConfig    `yaml:"ledger"`
	History     HistoryConfig   `yaml:"history"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Recompute   RecomputeConfig `yaml:"recompute"`
	Wallet      WalletConfig    `yaml:"wallet"`
	Storage     StorageConfig   `yaml:"storage"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Cors        CorsConfig      `yaml:"cors"`
}
