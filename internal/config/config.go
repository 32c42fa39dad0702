package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "tvaudience/internal/errors"
)

// EnvPrefix namespaces all environment overrides (TVA_DATASET_DIR, ...)
const EnvPrefix = "TVA"

// Config represents the complete application configuration
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Daily     DailyConfig     `yaml:"daily" envconfig:"DAILY"`
	Features  FeaturesConfig  `yaml:"features" envconfig:"FEATURES"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// DatasetConfig locates the vendor spreadsheets and the holiday reference file
type DatasetConfig struct {
	Dir          string `yaml:"dir" envconfig:"DIR" validate:"required"`
	ProgFile     string `yaml:"prog_file" envconfig:"PROG_FILE" validate:"required"`
	MonthlyFile  string `yaml:"monthly_file" envconfig:"MONTHLY_FILE" validate:"required"`
	DailyFile    string `yaml:"daily_file" envconfig:"DAILY_FILE" validate:"required"`
	HolidaysFile string `yaml:"holidays_file" envconfig:"HOLIDAYS_FILE" validate:"required"`
}

// DailyConfig controls timestamp construction for the daily table
type DailyConfig struct {
	Localize  bool          `yaml:"localize" envconfig:"LOCALIZE"`
	Timezone  string        `yaml:"timezone" envconfig:"TIMEZONE" validate:"required,timezone"`
	SlotStep  time.Duration `yaml:"slot_step" envconfig:"SLOT_STEP" validate:"min=1m,max=1h"`
	Frequency time.Duration `yaml:"frequency" envconfig:"FREQUENCY" validate:"gt=0"`
}

// FeaturesConfig controls the calendar features added to the daily table
type FeaturesConfig struct {
	Hour          bool `yaml:"hour" envconfig:"HOUR"`
	ModelFeatures bool `yaml:"model_features" envconfig:"MODEL_FEATURES"`
	YearBase      int  `yaml:"year_base" envconfig:"YEAR_BASE" validate:"min=1900,max=2100"`
}

// ExportConfig contains flat-file and table-store output configuration
type ExportConfig struct {
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	BOMPrefix  bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
	Glossary   bool   `yaml:"glossary" envconfig:"GLOSSARY"`
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
}

// PipelineConfig selects the tables a run produces
type PipelineConfig struct {
	Tables  []string `yaml:"tables" envconfig:"TABLES" validate:"min=1,dive,oneof=monthly daily prog"`
	Workers int      `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=3"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (or the first config file found in the usual locations when path is
// empty), then TVA_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("path", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current values
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks every section against its validation tags
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperrors.NewConfigError("config validation failed", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, formatValidationError(fe))
		}
		return apperrors.NewConfigError("config validation failed", fmt.Errorf("%s", strings.Join(msgs, "; ")))
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return apperrors.NewConfigError("config validation failed",
			fmt.Errorf("logging.file_path is required for output %q", c.Logging.Output))
	}
	return nil
}

func formatValidationError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "timezone":
		return fmt.Sprintf("%s is not a known time zone: %v", field, fe.Value())
	case "min", "max", "gt":
		return fmt.Sprintf("%s must satisfy %s=%s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"tvaudience.yaml",
		"configs/tvaudience.yaml",
		"../configs/tvaudience.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Dir:          "../datasets/kino_polska",
			ProgFile:     "PROG.xls",
			MonthlyFile:  "MTHLY.xls",
			DailyFile:    "DAILY.xls",
			HolidaysFile: "holidays.csv",
		},
		Daily: DailyConfig{
			Localize:  false,
			Timezone:  "Europe/Warsaw",
			SlotStep:  time.Hour,
			Frequency: time.Hour,
		},
		Features: FeaturesConfig{
			Hour:          false,
			ModelFeatures: false,
			YearBase:      2020,
		},
		Export: ExportConfig{
			OutputDir: "../datasets/kino_polska/tableau",
			Glossary:  true,
		},
		Pipeline: PipelineConfig{
			Tables:  []string{"monthly", "daily", "prog"},
			Workers: 1,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/tvaudience.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "tvaudience",
			TraceExporter: "none",
		},
	}
}
