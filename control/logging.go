// control/logging.go
// Author: momentics <momentics@gmail.com>
//
// Logger construction from LoggingCfg.

package control

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus logger for cfg. An unknown level keeps Info; a
// log file that cannot be opened falls back to stderr with a warning.
func NewLogger(cfg LoggingCfg) *logrus.Logger {
	log := logrus.New()
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	_ = ApplyLevel(log, cfg.Level)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			log.SetOutput(f)
		} else {
			log.WithError(err).Warn("failed to open log file, falling back to stderr")
		}
	}
	return log
}

// ApplyLevel sets the level named by level. It is used on config reload.
func ApplyLevel(log *logrus.Logger, level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}
