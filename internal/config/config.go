package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Scoring  ScoringConfig  `yaml:"scoring" envconfig:"SCORING"`
	Matching MatchingConfig `yaml:"matching" envconfig:"MATCHING"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/series.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"data/output"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// ScoringConfig contains scoring engine configuration
type ScoringConfig struct {
	// BasePoints is the points awarded for first place; each subsequent
	// place earns one point fewer, floored at zero.
	BasePoints int `yaml:"base_points" envconfig:"BASE_POINTS" default:"100"`
	// MaxCountingRaces caps how many races count toward a member's series
	// total. Zero means every race counts.
	MaxCountingRaces int `yaml:"max_counting_races" envconfig:"MAX_COUNTING_RACES" default:"0"`
	// AgeGradingYear selects the factor table edition used for the run.
	AgeGradingYear int `yaml:"age_grading_year" envconfig:"AGE_GRADING_YEAR" default:"2020"`
}

// MatchingConfig contains matching engine thresholds
type MatchingConfig struct {
	// AgeTolerance is the maximum age difference still considered an exact
	// match; covers off-by-one birthday drift between roster and race data.
	AgeTolerance int `yaml:"age_tolerance" envconfig:"AGE_TOLERANCE" default:"1"`
	// MinConfidence is the minimum fuzzy similarity accepted as a match.
	MinConfidence float64 `yaml:"min_confidence" envconfig:"MIN_CONFIDENCE" default:"0.70"`
	// AmbiguityMargin is the maximum gap between the best and second-best
	// fuzzy scores below which the match is rejected as ambiguous.
	AmbiguityMargin float64 `yaml:"ambiguity_margin" envconfig:"AMBIGUITY_MARGIN" default:"0.05"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("SERIES", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs layers the file config between the environment and the
// built-in defaults: env wins, then the file, then defaults. envconfig has
// already filled defaults into the env config, so an env value still equal
// to its default is treated as unset and the file may supply it. The one
// blind spot is an env var explicitly set to the default value while the
// file disagrees; the file wins there.
func mergeConfigs(fileConfig, envConfig Config) Config {
	defaults := Default()
	merged := envConfig

	pickString := func(env, file, def string) string {
		if env != def {
			return env
		}
		if file != "" {
			return file
		}
		return def
	}
	pickInt := func(env, file, def int) int {
		if env != def {
			return env
		}
		if file != 0 {
			return file
		}
		return def
	}
	pickFloat := func(env, file, def float64) float64 {
		if env != def {
			return env
		}
		if file != 0 {
			return file
		}
		return def
	}

	merged.Logging.Level = pickString(envConfig.Logging.Level, fileConfig.Logging.Level, defaults.Logging.Level)
	merged.Logging.Format = pickString(envConfig.Logging.Format, fileConfig.Logging.Format, defaults.Logging.Format)
	merged.Logging.Output = pickString(envConfig.Logging.Output, fileConfig.Logging.Output, defaults.Logging.Output)
	merged.Logging.FilePath = pickString(envConfig.Logging.FilePath, fileConfig.Logging.FilePath, defaults.Logging.FilePath)

	merged.Paths.DataDir = pickString(envConfig.Paths.DataDir, fileConfig.Paths.DataDir, defaults.Paths.DataDir)
	merged.Paths.OutputDir = pickString(envConfig.Paths.OutputDir, fileConfig.Paths.OutputDir, defaults.Paths.OutputDir)
	merged.Paths.LogsDir = pickString(envConfig.Paths.LogsDir, fileConfig.Paths.LogsDir, defaults.Paths.LogsDir)

	merged.Scoring.BasePoints = pickInt(envConfig.Scoring.BasePoints, fileConfig.Scoring.BasePoints, defaults.Scoring.BasePoints)
	merged.Scoring.MaxCountingRaces = pickInt(envConfig.Scoring.MaxCountingRaces, fileConfig.Scoring.MaxCountingRaces, defaults.Scoring.MaxCountingRaces)
	merged.Scoring.AgeGradingYear = pickInt(envConfig.Scoring.AgeGradingYear, fileConfig.Scoring.AgeGradingYear, defaults.Scoring.AgeGradingYear)

	merged.Matching.AgeTolerance = pickInt(envConfig.Matching.AgeTolerance, fileConfig.Matching.AgeTolerance, defaults.Matching.AgeTolerance)
	merged.Matching.MinConfidence = pickFloat(envConfig.Matching.MinConfidence, fileConfig.Matching.MinConfidence, defaults.Matching.MinConfidence)
	merged.Matching.AmbiguityMargin = pickFloat(envConfig.Matching.AmbiguityMargin, fileConfig.Matching.AmbiguityMargin, defaults.Matching.AmbiguityMargin)

	return merged
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Scoring.BasePoints <= 0 {
		return fmt.Errorf("base points must be positive, got %d", c.Scoring.BasePoints)
	}

	if c.Scoring.MaxCountingRaces < 0 {
		return fmt.Errorf("max counting races cannot be negative, got %d", c.Scoring.MaxCountingRaces)
	}

	if c.Matching.MinConfidence < 0 || c.Matching.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be in [0,1], got %f", c.Matching.MinConfidence)
	}

	if c.Matching.AmbiguityMargin < 0 || c.Matching.AmbiguityMargin > 1 {
		return fmt.Errorf("ambiguity margin must be in [0,1], got %f", c.Matching.AmbiguityMargin)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "console" && c.Logging.Output != "file" && c.Logging.Output != "both" {
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/series.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// GetLogPath returns the resolved path for a log file
func (c *Config) GetLogPath(filename string) string {
	return filepath.Join(c.Paths.LogsDir, filename)
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/series.log",
		},
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "data/output",
			LogsDir:   "logs",
		},
		Scoring: ScoringConfig{
			BasePoints:       100,
			MaxCountingRaces: 0,
			AgeGradingYear:   2020,
		},
		Matching: MatchingConfig{
			AgeTolerance:    1,
			MinConfidence:   0.70,
			AmbiguityMargin: 0.05,
		},
	}
}
