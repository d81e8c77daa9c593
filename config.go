package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	ConfigEnvPrefix   = "DCAT"
	DefaultOrigin     = "http://localhost:8080"
	DefaultLogMaxSize = 10
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string         `yaml:"git_commit" envconfig:"DCAT_GIT_COMMIT"`
	GitTag             string         `yaml:"git_tag" envconfig:"DCAT_GIT_TAG"`
	BuildTime          string         `yaml:"build_time" envconfig:"DCAT_BUILD_TIME"`
	IsProduction       bool           `yaml:"is_production" envconfig:"DCAT_IS_PRODUCTION"`
	LogLevel           zapcore.Level  `yaml:"log_level" envconfig:"DCAT_LOG_LEVEL"`
	LogFolder          string         `yaml:"log_folder" envconfig:"DCAT_LOG_FOLDER"`
	LogMaxSize         int            `yaml:"log_max_size" envconfig:"DCAT_LOG_MAX_SIZE"` // in megabytes
	Locale             string         `yaml:"locale" envconfig:"DCAT_LOCALE"`
	OpsEndpointsEnable bool           `yaml:"ops_endpoints_enable" envconfig:"DCAT_OPS_ENDPOINTS_ENABLE"`
	ProfilerEnable     bool           `yaml:"profiler_enable" envconfig:"DCAT_PROFILER_ENABLE"`
	Server             ServerConfig   `yaml:"server"`
	Store              StoreConfig    `yaml:"store"`
	Activity           ActivityConfig `yaml:"activity"`
	Redis              RedisConfig    `yaml:"redis"`
	BoltDB             BoltDBConfig   `yaml:"boltdb"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"DCAT_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"DCAT_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"DCAT_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"DCAT_SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"DCAT_SERVER_SHUTDOWN_TIMEOUT"`
}

// StoreConfig locates the remote catalog store.
type StoreConfig struct {
	Origin string `yaml:"origin" envconfig:"DCAT_STORE_ORIGIN"`
}

// ActivityConfig toggles the mutation journal backed by redis and boltdb.
type ActivityConfig struct {
	Enable bool `yaml:"enable" envconfig:"DCAT_ACTIVITY_ENABLE"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"DCAT_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"DCAT_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"DCAT_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"DCAT_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"DCAT_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"DCAT_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"DCAT_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"DCAT_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"DCAT_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"DCAT_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"DCAT_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"DCAT_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"DCAT_BOLTDB_BUCKET_NAME"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables into the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig sets defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.Store.Origin) == 0 {
		config.Store.Origin = DefaultOrigin
	}

	if u, err := url.Parse(config.Store.Origin); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid store origin %q", config.Store.Origin)
	}

	if len(config.Locale) == 0 {
		config.Locale = DefaultLocale
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = DefaultLogMaxSize
	}

	if config.Activity.Enable {
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port when the activity journal is enabled")
		}
		if len(config.BoltDB.FilePath) == 0 || len(config.BoltDB.BucketName) == 0 {
			return errors.New("make sure to set valid boltdb file and bucket when the activity journal is enabled")
		}
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The env file is optional.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	err = godotenv.Load("./config.env")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	err = LoadConfigEnvs(ConfigEnvPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
