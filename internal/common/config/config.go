package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Log      LogConfig      `json:"log"`
	Auth     AuthConfig     `json:"auth"`
	Yard     YardConfig     `json:"yard"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name     string `json:"name"`      // 服务名称
	Host     string `json:"host"`      // 服务地址
	GRPCPort int    `json:"grpc_port"` // gRPC端口
	HTTPPort int    `json:"http_port"` // HTTP端口
}

// DatabaseConfig 数据库配置。
// Driver 为 mysql 时使用 Host/Port/User/Password/Database；
// Driver 为 mongo 时使用 MongoURI + Database。
type DatabaseConfig struct {
	Driver   string `json:"driver"` // mysql / mongo
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	MongoURI string `json:"mongo_uri"`
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

// ConsulConfig Consul配置
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

// AuthConfig JWT 鉴权配置（身份协作方边界）。
type AuthConfig struct {
	Enabled       bool                `json:"enabled"`
	JWTSecret     string              `json:"jwt_secret"`
	Issuer        string              `json:"issuer"`
	Audience      string              `json:"audience"`
	PublicMethods []string            `json:"public_methods"`
	RBAC          map[string][]string `json:"rbac"` // method -> 允许的角色
}

// YardConfig 场内业务配置。
type YardConfig struct {
	DelayThresholdMinutes int  `json:"delay_threshold_minutes"` // 排队延误阈值
	DockCount             int  `json:"dock_count"`              // 每个分区的月台数
	Seed                  bool `json:"seed"`                    // 空库时写入演示数据
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置：JSON 文件 + .env/环境变量覆盖敏感项。
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = defaultConfig()

		// .env 可选，密钥类配置不进配置文件
		if dotErr := godotenv.Load(); dotErr != nil {
			logrus.Debug("no .env file found, using system environment variables")
		}

		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
		} else {
			data, readErr := os.ReadFile(configPath)
			if readErr != nil {
				err = fmt.Errorf("failed to read config file: %w", readErr)
				return
			}
			if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
				err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
				return
			}
		}

		applyEnvOverrides(globalConfig)
	})

	if err != nil {
		return nil, err
	}
	return globalConfig, nil
}

// applyEnvOverrides 环境变量优先于配置文件（只覆盖敏感/部署相关项）。
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("YARD_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("YARD_MONGO_URI"); v != "" {
		cfg.Database.MongoURI = v
	}
	if v := os.Getenv("YARD_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("YARD_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "yard-service",
			Host:     "0.0.0.0",
			GRPCPort: 50051,
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "yardlink",
			MongoURI: "mongodb://localhost:27017",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
		Auth: AuthConfig{
			Enabled: false,
			Issuer:  "yardlink",
		},
		Yard: YardConfig{
			DelayThresholdMinutes: 30,
			DockCount:             9,
			Seed:                  true,
		},
	}
}
