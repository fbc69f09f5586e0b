package config

import (
	"os"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"k8s.io/klog/v2"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Worker    WorkerConfig    `yaml:"worker"`
	Extractor ExtractorConfig `yaml:"extractor"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT" env-default:"8080"`
	Mode string `yaml:"mode" env:"GIN_MODE" env-default:"debug"` // debug, release
}

// StorageConfig 快照存储后端：gorm 或 redis
type StorageConfig struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"gorm"`
}

type DatabaseConfig struct {
	Type string `yaml:"type" env:"DB_TYPE" env-default:"sqlite"` // sqlite, mysql, postgres
	DSN  string `yaml:"dsn" env:"DB_DSN" env-default:"./data/maitrisea.db"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"127.0.0.1:6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Key      string `yaml:"key" env:"REDIS_KEY" env-default:"maitrisea_db_v1"`
}

type WorkspaceConfig struct {
	ID            string `yaml:"id" env:"WORKSPACE_ID" env-default:"ws_1"`
	DefaultUserID string `yaml:"default_user_id" env:"DEFAULT_USER_ID" env-default:"u_1"`
}

// WebhookConfig 文档生成 webhook，设置中未配置时使用
type WebhookConfig struct {
	URL string `yaml:"url" env:"MAKE_WEBHOOK_URL" env-default:""`
}

type WorkerConfig struct {
	PoolSize int `yaml:"pool_size" env:"WORKER_POOL_SIZE" env-default:"4"`
}

// ExtractorConfig 模板文件下载限制
type ExtractorConfig struct {
	Timeout  time.Duration `yaml:"timeout" env:"EXTRACTOR_TIMEOUT" env-default:"30s"`
	MaxBytes int64         `yaml:"max_bytes" env:"EXTRACTOR_MAX_BYTES" env-default:"10485760"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

func loadConfig() *Config {
	config := &Config{}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 环境变量优先级高于配置文件
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, config); err != nil {
			klog.Warningf("读取配置文件失败，改用环境变量: path=%s, err=%v", configPath, err)
			_ = cleanenv.ReadEnv(config)
		}
	} else if err := cleanenv.ReadEnv(config); err != nil {
		klog.Warningf("读取环境变量配置失败: %v", err)
	}

	return config
}
