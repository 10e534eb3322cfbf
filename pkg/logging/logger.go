package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `json:"level" yaml:"level"`             // debug, info, warn, error
	Format     string `json:"format" yaml:"format"`           // json, pretty
	OutputFile string `json:"output_file" yaml:"output_file"` // file path for logs
	Console    bool   `json:"console" yaml:"console"`         // also log to console
}

// DefaultLogConfig returns sensible defaults
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level:   "info",
		Format:  "pretty",
		Console: true,
	}
}

// SetupLogger configures the global logger
func SetupLogger(config *LogConfig) error {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer

	// Console output
	if config.Console {
		if config.Format == "pretty" {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: time.RFC3339,
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	// File output
	if config.OutputFile != "" {
		logDir := filepath.Dir(config.OutputFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return err
		}

		logFile, err := os.OpenFile(config.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}

		writers = append(writers, logFile)
	}

	if len(writers) > 1 {
		log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	} else if len(writers) == 1 {
		log.Logger = zerolog.New(writers[0]).With().Timestamp().Logger()
	}

	log.Info().
		Str("level", config.Level).
		Str("format", config.Format).
		Msg("Logger initialized")

	return nil
}

// GetLogger returns a contextual logger
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// GetDatasetLogger returns a logger for dataset load operations
func GetDatasetLogger(source string) zerolog.Logger {
	return log.With().
		Str("component", "dataset").
		Str("source", source).
		Logger()
}

// GetRenderLogger returns a logger for render operations
func GetRenderLogger(renderID string) zerolog.Logger {
	return log.With().
		Str("component", "presentation").
		Str("render_id", renderID).
		Logger()
}
