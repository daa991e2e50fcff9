package types

import "time"

// AppConfig is the root configuration for the patlens gateway
type AppConfig struct {
	DebugMode  bool `key:"debugMode" json:"debug_mode"`
	PrettyLogs bool `key:"prettyLogs" json:"pretty_logs"`

	Gateway  GatewayConfig  `key:"gateway" json:"gateway"`
	Database DatabaseConfig `key:"database" json:"database"`
	BigQuery BigQueryConfig `key:"bigquery" json:"bigquery"`
	Cache    CacheConfig    `key:"cache" json:"cache"`
	Assist   AssistConfig   `key:"assist" json:"assist"`
	Export   ExportConfig   `key:"export" json:"export"`
}

type GatewayConfig struct {
	HTTP            HTTPConfig    `key:"http" json:"http"`
	ShutdownTimeout time.Duration `key:"shutdownTimeout" json:"shutdown_timeout"`
}

type HTTPConfig struct {
	Host             string     `key:"host" json:"host"`
	Port             int        `key:"port" json:"port"`
	EnablePrettyLogs bool       `key:"enablePrettyLogs" json:"enable_pretty_logs"`
	CORS             CORSConfig `key:"cors" json:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `key:"allowedOrigins" json:"allowed_origins"`
	AllowedHeaders []string `key:"allowedHeaders" json:"allowed_headers"`
	AllowedMethods []string `key:"allowedMethods" json:"allowed_methods"`
}

type DatabaseConfig struct {
	Redis RedisConfig `key:"redis" json:"redis"`
}

type RedisMode string

const (
	RedisModeSingle  RedisMode = "single"
	RedisModeCluster RedisMode = "cluster"
)

type RedisConfig struct {
	Mode               RedisMode     `key:"mode" json:"mode"`
	Addrs              []string      `key:"addrs" json:"addrs"`
	Username           string        `key:"username" json:"username"`
	Password           string        `key:"password" json:"password"`
	ClientName         string        `key:"clientName" json:"client_name"`
	EnableTLS          bool          `key:"enableTLS" json:"enable_tls"`
	InsecureSkipVerify bool          `key:"insecureSkipVerify" json:"insecure_skip_verify"`
	PoolSize           int           `key:"poolSize" json:"pool_size"`
	MinIdleConns       int           `key:"minIdleConns" json:"min_idle_conns"`
	MaxIdleConns       int           `key:"maxIdleConns" json:"max_idle_conns"`
	ConnMaxIdleTime    time.Duration `key:"connMaxIdleTime" json:"conn_max_idle_time"`
	ConnMaxLifetime    time.Duration `key:"connMaxLifetime" json:"conn_max_lifetime"`
	DialTimeout        time.Duration `key:"dialTimeout" json:"dial_timeout"`
	ReadTimeout        time.Duration `key:"readTimeout" json:"read_timeout"`
	WriteTimeout       time.Duration `key:"writeTimeout" json:"write_timeout"`
	MaxRetries         int           `key:"maxRetries" json:"max_retries"`
}

// BigQueryConfig configures the PATSTAT query backend. When CredentialsJSON
// is empty the client falls back to application default credentials.
type BigQueryConfig struct {
	Project         string `key:"project" json:"project"`
	Dataset         string `key:"dataset" json:"dataset"`
	Location        string `key:"location" json:"location"`
	CredentialsJSON string `key:"credentialsJSON" json:"-"`

	// DryRunContributions validates contributed SQL against the backend
	// before accepting it into the catalog.
	DryRunContributions bool `key:"dryRunContributions" json:"dry_run_contributions"`
}

type CacheBackend string

const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// CacheConfig configures the execution result cache. TTL <= 0 means entries
// live for the process lifetime.
type CacheConfig struct {
	Backend    CacheBackend  `key:"backend" json:"backend"`
	TTL        time.Duration `key:"ttl" json:"ttl"`
	MaxEntries int           `key:"maxEntries" json:"max_entries"`
}

// AssistConfig configures the natural-language-to-SQL drafting service.
// The endpoint is OpenAI-compatible.
type AssistConfig struct {
	Enabled       bool          `key:"enabled" json:"enabled"`
	APIKey        string        `key:"apiKey" json:"-"`
	BaseURL       string        `key:"baseURL" json:"base_url"`
	Model         string        `key:"model" json:"model"`
	Timeout       time.Duration `key:"timeout" json:"timeout"`
	MaxConcurrent int           `key:"maxConcurrent" json:"max_concurrent"`
}

// ExportConfig configures the optional S3 export archive. Disabled when
// Bucket is empty.
type ExportConfig struct {
	Bucket         string `key:"bucket" json:"bucket"`
	Region         string `key:"region" json:"region"`
	Endpoint       string `key:"endpoint" json:"endpoint"`
	AccessKey      string `key:"accessKey" json:"-"`
	SecretKey      string `key:"secretKey" json:"-"`
	ForcePathStyle bool   `key:"forcePathStyle" json:"force_path_style"`
}
