package config

import (
	"errors"
	"runtime"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"
)

// maxWorkersPerCPU caps the pool size relative to the host: every task
// loads two full-resolution images and runs an inference subprocess, so
// an oversized pool exhausts memory long before it gains throughput.
const maxWorkersPerCPU = 4

// Config holds the main configuration for the application.
type Config struct {
	Paths   Paths   `mapstructure:"paths"`
	Workers Workers `mapstructure:"workers"`
	Extract Extract `mapstructure:"extract"`
	Storage Storage `mapstructure:"storage"`
	Scaler  Scaler  `mapstructure:"scaler"`
}

// Paths holds the three directory roots of a batch run.
type Paths struct {
	InputDir      string `mapstructure:"input_dir"`      // root of foreground images, scanned recursively
	BackgroundDir string `mapstructure:"background_dir"` // background pool, direct entries only
	OutputDir     string `mapstructure:"output_dir"`     // destination root, mirrors the input tree
}

// Workers holds the worker pool configuration.
type Workers struct {
	Max int `mapstructure:"max"` // concurrent tasks; clamped by Normalize
}

// Extract holds configuration for the subject-extraction subprocess.
type Extract struct {
	Command string `mapstructure:"command"` // extraction binary, e.g. "rembg"
}

// Storage holds configuration for the optional S3-compatible output mirror.
type Storage struct {
	Enabled    bool   `mapstructure:"enabled"`
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Scaler holds configuration for the background pre-scaler command.
type Scaler struct {
	MinDimension int    `mapstructure:"min_dimension"` // target for the smallest image dimension
	OutputSubdir string `mapstructure:"output_subdir"` // subdirectory of background_dir for results
	JPEGQuality  int    `mapstructure:"jpeg_quality"`
}

func setDefaults() {
	viper.SetDefault("paths.input_dir", "images/inputs")
	viper.SetDefault("paths.background_dir", "images/backgrounds")
	viper.SetDefault("paths.output_dir", "images/outputs")
	viper.SetDefault("workers.max", 8)
	viper.SetDefault("extract.command", "rembg")
	viper.SetDefault("storage.enabled", false)
	viper.SetDefault("scaler.min_dimension", 350)
	viper.SetDefault("scaler.output_subdir", "resized_backgrounds")
	viper.SetDefault("scaler.jpeg_quality", 90)
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"paths.input_dir":      "INPUT_DIR",
		"paths.background_dir": "BACKGROUND_DIR",
		"paths.output_dir":     "OUTPUT_DIR",
		"workers.max":          "MAX_WORKERS",
		"storage.access_key":   "STORAGE_ACCESS_KEY",
		"storage.secret_key":   "STORAGE_SECRET_KEY",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

// MustLoad loads the configuration from the given directory, falling back
// to built-in defaults when no config file exists there. It panics only on
// a malformed file, not a missing one, so the tool runs with zero setup.
func MustLoad(dir string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dir)
	viper.AutomaticEnv()

	setDefaults()
	mustBindEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			zlog.Logger.Panic().Err(err).Msg("failed to read config")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	cfg.Normalize()

	return &cfg
}

// Normalize clamps worker and scaler settings into their valid ranges.
func (c *Config) Normalize() {
	limit := runtime.NumCPU() * maxWorkersPerCPU

	if c.Workers.Max <= 0 {
		c.Workers.Max = 8
	}
	if c.Workers.Max > limit {
		c.Workers.Max = limit
	}

	if c.Scaler.MinDimension <= 0 {
		c.Scaler.MinDimension = 350
	}
	if c.Scaler.JPEGQuality <= 0 || c.Scaler.JPEGQuality > 100 {
		c.Scaler.JPEGQuality = 90
	}
	if c.Scaler.OutputSubdir == "" {
		c.Scaler.OutputSubdir = "resized_backgrounds"
	}
}
