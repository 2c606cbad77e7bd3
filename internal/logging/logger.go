package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It starts as a plain logrus logger so
// packages can log before Bootstrap runs (tests do).
var Log = logrus.New()

// Bootstrap configures Log with a text formatter writing to stderr. An
// unknown level falls back to info.
func Bootstrap(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	Log = &logrus.Logger{
		Out:   os.Stderr,
		Hooks: make(logrus.LevelHooks),
		Formatter: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		},
		Level:    lvl,
		ExitFunc: os.Exit,
	}
	if err != nil && level != "" {
		Log.Warnf("unknown log level %q, using info", level)
	}
}
