package config

import (
	"os"
	"testing"
	"time"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/driftworks/gust/src/common"
)

// Default configuration values.
const (
	DefaultLogLevel       = "debug"
	DefaultGossipInterval = 250 * time.Millisecond
	DefaultWorkload       = "broadcast"
)

// Config contains all the configuration properties of a gust node.
type Config struct {
	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile is an optional file that logs are copied to, in addition to
	// stderr. Useful because the harness treats stderr as free-form debug
	// output and may interleave it across nodes.
	LogFile string `mapstructure:"log-file"`

	// Workload selects the protocol the node speaks: broadcast, echo, or
	// unique-id.
	Workload string `mapstructure:"workload"`

	// GossipInterval is the period of the gossip timer in the broadcast
	// workload. A zero or negative interval disables gossip entirely, leaving
	// a single-node broadcast server.
	GossipInterval time.Duration `mapstructure:"gossip-interval"`

	// Strict restores fail-fast behaviour on protocol violations, such as
	// receiving one of the node's own acknowledgements. By default violations
	// are logged and ignored so a single misbehaving peer cannot take the
	// node down.
	Strict bool `mapstructure:"strict"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:       DefaultLogLevel,
		Workload:       DefaultWorkload,
		GossipInterval: DefaultGossipInterval,
	}
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t)
	return config
}

// Logger returns a formatted logrus Entry, with prefix set to "gust". Output
// goes to stderr; stdout carries the protocol and must stay clean.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Out = os.Stderr
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			c.logger.Hooks.Add(lfshook.NewHook(c.LogFile, new(logrus.JSONFormatter)))
		}
	}
	return c.logger.WithField("prefix", "gust")
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
