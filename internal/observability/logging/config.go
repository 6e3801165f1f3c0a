package logging

import "fmt"

type Config struct {
	Format string
	Level  string
	Output string
}

func DefaultConfig() Config {
	return Config{
		Format: "pretty",
		Level:  "info",
		Output: "stderr",
	}
}

const (
	FormatPretty = "pretty"
	FormatJSONL  = "jsonl"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Validate rejects unknown formats and levels
func (c Config) Validate() error {
	switch c.Format {
	case "", FormatPretty, FormatJSONL:
	default:
		return fmt.Errorf("invalid log format %q (want pretty or jsonl)", c.Format)
	}
	switch c.Level {
	case "", LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.Level)
	}
	return nil
}

func levelPriority(level string) int {
	switch level {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 1 // default to info
	}
}
