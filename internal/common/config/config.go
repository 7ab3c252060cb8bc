package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Auth     AuthConfig     `json:"auth"`
	Log      LogConfig      `json:"log"`
	Seed     SeedConfig     `json:"seed"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name     string `json:"name"`      // 服务名称
	Host     string `json:"host"`      // 监听地址
	HTTPPort int    `json:"http_port"` // HTTP端口
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"`   // mysql / sqlite
	Host     string `json:"host"`     // 数据库地址（mysql）
	Port     int    `json:"port"`     // 数据库端口（mysql）
	User     string `json:"user"`     // 用户名（mysql）
	Password string `json:"password"` // 密码（mysql）
	Database string `json:"database"` // 数据库名（mysql）
	Path     string `json:"path"`     // 数据文件路径（sqlite）
	MaxIdle  int    `json:"max_idle"` // 最大空闲连接
	MaxOpen  int    `json:"max_open"` // 最大打开连接
}

// ConsulConfig Consul配置
type ConsulConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// AuthConfig 鉴权配置（HS256 JWT）
type AuthConfig struct {
	Enabled     bool     `json:"enabled"`
	JWTSecret   string   `json:"jwt_secret"`
	Issuer      string   `json:"issuer"`
	Audience    string   `json:"audience"`
	TokenTTLMin int      `json:"token_ttl_min"` // access token 有效期（分钟）
	PublicPaths []string `json:"public_paths"`  // 免鉴权路径前缀
}

// LogConfig 日志配置
type LogConfig struct {
	Driver string `json:"driver"` // logrus, zap
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

// SeedConfig 演示数据配置
type SeedConfig struct {
	Demo bool `json:"demo"` // 库为空时写入演示数据
}

// LoadConfig 加载配置文件；文件不存在时退回默认配置（本地开发）。
// 返回的是独立实例，调用方自行持有并注入，不设全局单例。
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logrus.Warnf("Config file not found: %s, using default config", configPath)
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// defaultConfig 默认配置（开发环境：sqlite + 演示数据）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "berrymart",
			Host:     "0.0.0.0",
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "berrymart",
			Path:     "data/berrymart.db",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Auth: AuthConfig{
			Enabled:     true,
			JWTSecret:   "dev-secret-change-me",
			Issuer:      "berrymart",
			Audience:    "berrymart",
			TokenTTLMin: 24 * 60,
			PublicPaths: []string{"/healthz", "/api/login"},
		},
		Log: LogConfig{
			Driver: "logrus",
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
		Seed: SeedConfig{
			Demo: true,
		},
	}
}
