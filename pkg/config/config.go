package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Runner    RunnerConfig    `mapstructure:"runner"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
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
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QueueConfig 异步队列配置
// HardTimeout 是队列层的硬超时，必须大于 runner.exec_timeout，
// 否则子进程超时错误会被队列抢先截断。
type QueueConfig struct {
	Name        string        `mapstructure:"name"`
	Concurrency int           `mapstructure:"concurrency"`
	MaxRetry    int           `mapstructure:"max_retry"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	HardTimeout time.Duration `mapstructure:"hard_timeout"`
}

// RunnerConfig 脚本执行配置
type RunnerConfig struct {
	ScriptsDir  string        `mapstructure:"scripts_dir"`
	PythonBin   string        `mapstructure:"python_bin"`
	ExecTimeout time.Duration `mapstructure:"exec_timeout"`
	KillDelay   time.Duration `mapstructure:"kill_delay"`
}

type ReconcileConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Spec       string        `mapstructure:"spec"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 设置默认值
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.max_header_bytes", 1048576)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.database", "validators")
	viper.SetDefault("database.max_connections", 20)
	viper.SetDefault("database.max_idle_connections", 10)
	viper.SetDefault("database.connection_max_lifetime", "1h")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("queue.name", "scripts")
	viper.SetDefault("queue.concurrency", 4)
	viper.SetDefault("queue.max_retry", 3)
	viper.SetDefault("queue.retry_delay", "60s")
	viper.SetDefault("queue.hard_timeout", "600s")

	// 子进程超时 540s，留在队列硬超时之内
	viper.SetDefault("runner.scripts_dir", "scripts")
	viper.SetDefault("runner.python_bin", "python3")
	viper.SetDefault("runner.exec_timeout", "540s")
	viper.SetDefault("runner.kill_delay", "5s")

	viper.SetDefault("reconcile.enabled", true)
	viper.SetDefault("reconcile.spec", "@every 5m")
	viper.SetDefault("reconcile.stale_after", "15m")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
