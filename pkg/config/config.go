package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jobs/dcron/internal/ids"
)

type Config struct {
	Node      NodeConfig      `mapstructure:"node"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Pool      PoolConfig      `mapstructure:"pool"`
	Heartbeat HeartbeatConfig `mapstructure:"heartbeat"`
	Recover   RecoverConfig   `mapstructure:"recover"`
	Jobs      []JobConfig     `mapstructure:"jobs"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type NodeConfig struct {
	ID       string `mapstructure:"id"`        // 为空时由主机名和IP推导
	WorkerID int    `mapstructure:"worker_id"` // 雪花ID的WorkerId, 0-1023; -1 由 node.id 推导
	Weight   int    `mapstructure:"weight"`
	Strategy string `mapstructure:"strategy"` // default | weighted
}

type FetchConfig struct {
	Period   time.Duration `mapstructure:"period"`   // loader 轮询间隔
	Duration time.Duration `mapstructure:"duration"` // 预取窗口
}

type PoolConfig struct {
	CoreSize      int           `mapstructure:"core_size"`
	MaxSize       int           `mapstructure:"max_size"`
	QueueCapacity int           `mapstructure:"queue_capacity"`
	KeepAlive     time.Duration `mapstructure:"keep_alive"`
}

type HeartbeatConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type RecoverConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// JobConfig 节点启动时注册的任务
type JobConfig struct {
	Name string `mapstructure:"name"`
	Cron string `mapstructure:"cron"`
	Key  string `mapstructure:"key"`
}

type DatabaseConfig struct {
	Host                  string        `mapstructure:"host"`
	Port                  int           `mapstructure:"port"`
	Database              string        `mapstructure:"database"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	MaxConnections        int           `mapstructure:"max_connections"`
	MaxIdleConnections    int           `mapstructure:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `mapstructure:"connection_max_lifetime"`
	AutoMigrate           bool          `mapstructure:"auto_migrate"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"` // stdout 或文件路径
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

const envPrefix = "DCRON"

func setDefaults(v *viper.Viper) {
	v.SetDefault("node.id", "")
	v.SetDefault("node.worker_id", -1)
	v.SetDefault("node.weight", 1)
	v.SetDefault("node.strategy", "default")

	v.SetDefault("fetch.period", "5s")
	v.SetDefault("fetch.duration", "30s")

	v.SetDefault("pool.core_size", 4)
	v.SetDefault("pool.max_size", 16)
	v.SetDefault("pool.queue_capacity", 64)
	v.SetDefault("pool.keep_alive", "60s")

	v.SetDefault("heartbeat.enabled", true)
	v.SetDefault("heartbeat.interval", "10s")
	v.SetDefault("recover.enabled", true)
	v.SetDefault("recover.interval", "30s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "jobs")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_idle_connections", 10)
	v.SetDefault("database.connection_max_lifetime", "1h")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_header_bytes", 1048576)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Load 读取 yaml 配置, 环境变量 DCRON_* 覆盖文件中的值.
// path 为空时只使用默认值和环境变量.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Node.ID == "" {
		cfg.Node.ID = DefaultNodeID()
	}
	if cfg.Node.WorkerID < 0 {
		cfg.Node.WorkerID = int(ids.WorkerIDFor(cfg.Node.ID))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Node.ID == "" {
		errs = append(errs, errors.New("node.id is empty"))
	}
	if c.Node.WorkerID < -1 || c.Node.WorkerID > ids.MaxWorkerID {
		errs = append(errs, fmt.Errorf("node.worker_id must be -1 or in [0, %d], got %d", ids.MaxWorkerID, c.Node.WorkerID))
	}
	if c.Node.Strategy != "default" && c.Node.Strategy != "weighted" {
		errs = append(errs, fmt.Errorf("unknown node.strategy %q", c.Node.Strategy))
	}
	if c.Fetch.Period <= 0 || c.Fetch.Duration <= 0 {
		errs = append(errs, errors.New("fetch.period and fetch.duration must be positive"))
	}
	if c.Pool.CoreSize <= 0 || c.Pool.MaxSize < c.Pool.CoreSize {
		errs = append(errs, fmt.Errorf("pool sizes invalid: core=%d max=%d", c.Pool.CoreSize, c.Pool.MaxSize))
	}
	if c.Pool.QueueCapacity < 0 {
		errs = append(errs, errors.New("pool.queue_capacity must not be negative"))
	}
	if c.Heartbeat.Interval <= 0 || c.Recover.Interval <= 0 {
		errs = append(errs, errors.New("heartbeat.interval and recover.interval must be positive"))
	}
	for i, job := range c.Jobs {
		if job.Name == "" || job.Cron == "" || job.Key == "" {
			errs = append(errs, fmt.Errorf("jobs[%d]: name, cron and key are required", i))
		}
	}
	return errors.Join(errs...)
}

// DefaultNodeID 主机名加第一个非回环 IPv4 地址
func DefaultNodeID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	if ip := firstIPv4(); ip != "" {
		return host + "-" + ip
	}
	return host
}

func firstIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip := ipNet.IP.To4(); ip != nil {
			return ip.String()
		}
	}
	return ""
}
