package app

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus logger from config. The format
// falls back to text and the level to error; an unparsable level is a
// configuration error rather than a silent fallback.
func InitLogger(config LoggingConfig) error {
	if strings.EqualFold(config.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{})
	}

	level := log.ErrorLevel
	if config.Level != "" {
		parsed, err := log.ParseLevel(config.Level)
		if err != nil {
			return fmt.Errorf("unknown log level %q", config.Level)
		}
		level = parsed
	}
	log.SetLevel(level)

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	log.WithFields(log.Fields{
		"topic": "igfe",
		"event": "startup",
		"level": level.String(),
	}).Info("logging begins")

	return nil
}
