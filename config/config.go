package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging     LoggingConfig  `yaml:"logging"`
	Server      ServerConfig   `yaml:"server"`
	GeminiModel string         `yaml:"gemini_model"`
	Mongo       MongoConfig    `yaml:"mongo"`
	Blob        BlobConfig     `yaml:"blob"`
	Kafka       KafkaConfig    `yaml:"kafka"`
	Pipeline    PipelineConfig `yaml:"pipeline"`
	Quota       QuotaConfig    `yaml:"quota"`
	Cache       CacheConfig    `yaml:"cache"`

	// Loaded from environment, not from config.yaml.
	GeminiApiKey string `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type MongoConfig struct {
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

// BlobConfig configures the S3 bucket used for raw generated text objects.
type BlobConfig struct {
	Region string `yaml:"region"`
	Bucket string `yaml:"bucket"`
}

type KafkaConfig struct {
	Brokers    string `yaml:"brokers"`
	AuditTopic string `yaml:"audit_topic"`
}

// PipelineConfig holds the orchestration knobs.
//
// DeadlineSeconds is the overall fan-out/fan-in deadline for one generation
// request. Units still pending when it elapses are treated as failed.
type PipelineConfig struct {
	DeadlineSeconds int `yaml:"deadline_seconds"`
}

// QuotaConfig defines the per-user cumulative storage ceiling.
// MaxStorageBytes <= 0 falls back to the 1 GiB default.
type QuotaConfig struct {
	MaxStorageBytes int64 `yaml:"max_storage_bytes"`
}

type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	c.GeminiApiKey = os.Getenv("GEMINI_API_KEY")
	applyDefaults(&c)
	config = &c

	InitLogger(c.Logging.Level)
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func applyDefaults(c *AppConfig) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Pipeline.DeadlineSeconds <= 0 {
		c.Pipeline.DeadlineSeconds = 30
	}
	if c.Quota.MaxStorageBytes <= 0 {
		c.Quota.MaxStorageBytes = 1 << 30
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 60
	}
	if c.Kafka.AuditTopic == "" {
		c.Kafka.AuditTopic = "postforge.audit"
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
