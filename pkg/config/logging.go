package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ApplyLogging configures the standard logrus logger from c.
func (c LogConfig) ApplyLogging() error {
	level := c.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}
