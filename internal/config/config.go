package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Design DesignConfig `yaml:"design" mapstructure:"design"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DesignConfig holds the default rendering parameters for block designs.
// Any of these can be overridden per run via CLI flags.
type DesignConfig struct {
	GapPercent float64 `yaml:"gap_percent" mapstructure:"gap_percent"`
	DPI        int     `yaml:"dpi" mapstructure:"dpi"`
	FigWidth   float64 `yaml:"fig_width" mapstructure:"fig_width"`
	FigHeight  float64 `yaml:"fig_height" mapstructure:"fig_height"`
	LineWidth  float64 `yaml:"line_width" mapstructure:"line_width"`
	Background string  `yaml:"background" mapstructure:"background"`
	TextSize   float64 `yaml:"text_size" mapstructure:"text_size"`
	Adaptive   bool    `yaml:"adaptive_text" mapstructure:"adaptive_text"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	NameSuffix  string `yaml:"name_suffix" mapstructure:"name_suffix"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TOPOBLOCKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("design.gap_percent", 0.005)
	v.SetDefault("design.dpi", 300)
	v.SetDefault("design.fig_width", 12.0)
	v.SetDefault("design.fig_height", 12.0)
	v.SetDefault("design.line_width", 0.8)
	v.SetDefault("design.background", "transparent")
	v.SetDefault("design.text_size", 0)
	v.SetDefault("design.adaptive_text", true)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.name_suffix", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
