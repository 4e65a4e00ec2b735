package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/LilVoxy/water_quality/ml"
)

// Config is shared by the prediction server and the training job.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Training  TrainingConfig  `yaml:"training"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	RecentReadingsTTL time.Duration `yaml:"recent_readings_ttl"`
	RecentLimit       int           `yaml:"recent_limit"` // default page size of GET /api/data
}

// DatabaseConfig holds the connection settings. Driver is "mysql" or
// "sqlite"; sqlite only reads Path.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	Path            string        `yaml:"path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ArtifactsConfig says where the model and encoder files live.
type ArtifactsConfig struct {
	Dir         string `yaml:"dir"`
	ModelFile   string `yaml:"model_file"`
	EncoderFile string `yaml:"encoder_file"`
}

// TrainingConfig configures the training job.
type TrainingConfig struct {
	ml.Hyperparameters `yaml:",inline"`

	TestRatio           float64       `yaml:"test_ratio"`
	MinAccuracyWarning  float64       `yaml:"min_accuracy_warning"` // below this a run is logged as low quality
	RunInterval         time.Duration `yaml:"run_interval"`
	RunLogRetentionDays int           `yaml:"run_log_retention_days"`
	LogDir              string        `yaml:"log_dir"`
	Verbose             bool          `yaml:"verbose"`
}

// Values used when nothing else is configured
var (
	DefaultServerConfig = ServerConfig{
		Addr:              ":8000",
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		RecentReadingsTTL: 5 * time.Second,
		RecentLimit:       10,
	}

	DefaultDatabaseConfig = DatabaseConfig{
		Driver:          "mysql",
		Host:            "localhost",
		Port:            3306,
		User:            "root",
		DBName:          "water_quality",
		Path:            "water_quality.db",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}

	DefaultArtifactsConfig = ArtifactsConfig{
		Dir:         "artifacts",
		ModelFile:   "model.wqm",
		EncoderFile: "encoder.wqe",
	}

	DefaultTrainingConfig = TrainingConfig{
		Hyperparameters:     ml.DefaultHyperparameters(),
		TestRatio:           0.2,
		MinAccuracyWarning:  0.7,
		RunInterval:         24 * time.Hour,
		RunLogRetentionDays: 90,
		LogDir:              "logs",
		Verbose:             false,
	}
)

// SearchPaths are tried in order when no explicit path or WQ_CONFIG is set.
var SearchPaths = []string{"configs/water_quality.yaml", "water_quality.yaml"}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig,
		Database:  DefaultDatabaseConfig,
		Artifacts: DefaultArtifactsConfig,
		Training:  DefaultTrainingConfig,
	}
}

// Load reads configPath over the defaults. With an empty path it tries
// WQ_CONFIG and then SearchPaths, and falls back to the defaults when no
// file exists. WQ_DB_PASSWORD always overrides the database password.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		configPath = os.Getenv("WQ_CONFIG")
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, errors.Wrapf(err, "read config %s", configPath)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", configPath)
		}
	} else {
		for _, p := range SearchPaths {
			data, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return cfg, errors.Wrapf(err, "parse config %s", p)
			}
			break
		}
	}

	if pw, ok := os.LookupEnv("WQ_DB_PASSWORD"); ok {
		cfg.Database.Password = pw
	}
	applyDefaults(cfg)
	return cfg, cfg.Validate()
}

// Validate rejects settings the processes cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return errors.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1 {
		return errors.Errorf("training.test_ratio must be in (0,1), got %g", c.Training.TestRatio)
	}
	if c.Training.NumTrees < 1 {
		return errors.Errorf("training.trees must be >= 1, got %d", c.Training.NumTrees)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerConfig.Addr
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = DefaultServerConfig.ReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = DefaultServerConfig.WriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = DefaultServerConfig.IdleTimeout
	}
	if cfg.Server.RecentReadingsTTL <= 0 {
		cfg.Server.RecentReadingsTTL = DefaultServerConfig.RecentReadingsTTL
	}
	if cfg.Server.RecentLimit <= 0 {
		cfg.Server.RecentLimit = DefaultServerConfig.RecentLimit
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDatabaseConfig.Driver
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = DefaultDatabaseConfig.MaxOpenConns
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = DefaultDatabaseConfig.MaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime <= 0 {
		cfg.Database.ConnMaxLifetime = DefaultDatabaseConfig.ConnMaxLifetime
	}
	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = DefaultArtifactsConfig.Dir
	}
	if cfg.Artifacts.ModelFile == "" {
		cfg.Artifacts.ModelFile = DefaultArtifactsConfig.ModelFile
	}
	if cfg.Artifacts.EncoderFile == "" {
		cfg.Artifacts.EncoderFile = DefaultArtifactsConfig.EncoderFile
	}
	if cfg.Training.RunInterval <= 0 {
		cfg.Training.RunInterval = DefaultTrainingConfig.RunInterval
	}
	if cfg.Training.RunLogRetentionDays <= 0 {
		cfg.Training.RunLogRetentionDays = DefaultTrainingConfig.RunLogRetentionDays
	}
}
