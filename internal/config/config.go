package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gostatcheck/domain/assumptions"
	"gostatcheck/internal/errors"

	"github.com/joho/godotenv"
)

// Output formats understood by the report renderers and the workbook writer
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
	FormatXLSX     = "xlsx"
)

// Config represents the complete application configuration
type Config struct {
	Checks CheckConfig
	Input  InputConfig
	Output OutputConfig
	Log    LogConfig
}

// CheckConfig holds the statistical parameters of the checks
type CheckConfig struct {
	NormalityAlpha   float64
	HomogeneityAlpha float64
	SortBy           assumptions.SortKey
	Center           assumptions.Center
	GroupColumn      string
}

// InputConfig locates the data to check
type InputConfig struct {
	File  string
	Sheet string
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format string
	File   string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// LoadDotEnv seeds the environment from the given .env files, or from ./.env
// when none are given. Variables already set are never overridden and a
// missing default file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("loading %s: %w", strings.Join(paths, ", "), err))
	}
	return nil
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	checks, err := loadCheckConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load check configuration")
	}
	config.Checks = *checks
	config.Input = *loadInputConfig()
	config.Output = *loadOutputConfig()
	config.Log = LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Checks: CheckConfig{
			NormalityAlpha:   assumptions.DefaultAlpha,
			HomogeneityAlpha: assumptions.DefaultAlpha,
			SortBy:           assumptions.SortByPValue,
			Center:           assumptions.CenterMedian,
		},
		Input:  InputConfig{Sheet: "Sheet1"},
		Output: OutputConfig{Format: FormatText},
		Log:    LogConfig{Level: "INFO"},
	}
}

func loadCheckConfig() (*CheckConfig, error) {
	normalityAlpha, err := getEnvFloat("STATCHECK_NORMALITY_ALPHA", assumptions.DefaultAlpha)
	if err != nil {
		return nil, err
	}
	homogeneityAlpha, err := getEnvFloat("STATCHECK_HOMOGENEITY_ALPHA", assumptions.DefaultAlpha)
	if err != nil {
		return nil, err
	}
	sortBy, err := assumptions.ParseSortKey(os.Getenv("STATCHECK_SORT_BY"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	center, err := assumptions.ParseCenter(os.Getenv("STATCHECK_LEVENE_CENTER"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	return &CheckConfig{
		NormalityAlpha:   normalityAlpha,
		HomogeneityAlpha: homogeneityAlpha,
		SortBy:           sortBy,
		Center:           center,
		GroupColumn:      getEnvOrDefault("STATCHECK_GROUP_COLUMN", ""),
	}, nil
}

func loadInputConfig() *InputConfig {
	return &InputConfig{
		File:  getEnvOrDefault("STATCHECK_INPUT_FILE", ""),
		Sheet: getEnvOrDefault("STATCHECK_SHEET", "Sheet1"),
	}
}

func loadOutputConfig() *OutputConfig {
	return &OutputConfig{
		Format: strings.ToLower(getEnvOrDefault("STATCHECK_OUTPUT_FORMAT", FormatText)),
		File:   getEnvOrDefault("STATCHECK_OUTPUT_FILE", ""),
	}
}

// Validate checks thresholds, names and formats. It is also run after CLI
// flags are applied.
func (c *Config) Validate() error {
	if err := assumptions.ValidateAlpha(c.Checks.NormalityAlpha); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("normality alpha: %v", err))
	}
	if err := assumptions.ValidateAlpha(c.Checks.HomogeneityAlpha); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("homogeneity alpha: %v", err))
	}
	if _, err := assumptions.ParseSortKey(string(c.Checks.SortBy)); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if _, err := assumptions.ParseCenter(string(c.Checks.Center)); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if !IsKnownFormat(c.Output.Format) {
		return errors.ConfigInvalid(fmt.Sprintf("unknown output format %q", c.Output.Format))
	}
	if c.Output.Format == FormatXLSX && c.Output.File == "" {
		return errors.ConfigInvalid("xlsx output requires an output file")
	}
	if c.Input.File != "" {
		switch strings.ToLower(filepath.Ext(c.Input.File)) {
		case ".xlsx", ".xlsm", ".csv":
		default:
			return errors.ConfigInvalid(fmt.Sprintf("unsupported input file %q (want .xlsx or .csv)", c.Input.File))
		}
	}
	return nil
}

// IsKnownFormat reports whether format names a supported output format
func IsKnownFormat(format string) bool {
	switch format {
	case FormatText, FormatMarkdown, FormatHTML, FormatJSON, FormatXLSX:
		return true
	}
	return false
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s=%q is not a number", key, value))
	}
	return f, nil
}
