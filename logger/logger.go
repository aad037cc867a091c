package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	projectLogger *logrus.Logger
	once          sync.Once
)

// GetProjectLogger returns the logger shared by every package in kinetic.
func GetProjectLogger() *logrus.Logger {
	once.Do(func() {
		projectLogger = logrus.New()
		projectLogger.Out = os.Stderr
		projectLogger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
		projectLogger.Level = logrus.InfoLevel
	})
	return projectLogger
}

// SetLevel parses a level name such as "debug" or "warn" and applies it to the project logger.
// Unknown names leave the current level untouched and return the parse error.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	GetProjectLogger().SetLevel(lvl)
	return nil
}
