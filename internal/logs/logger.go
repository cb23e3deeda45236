package logs

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
			logrus.FieldKeyTime:  "time",
		},
	})
	return l
}

// LogJSON writes one JSON line. level is one of "DEBUG", "INFO", "WARN", "ERROR" & "FATAL".
func LogJSON(level, message string, fields map[string]interface{}) {
	logger.WithFields(logrus.Fields(fields)).Log(parseLevel(level), message)
}

// SetLevel drops entries below level. Unknown names fall back to INFO.
func SetLevel(level string) {
	logger.SetLevel(parseLevel(level))
}

func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

// Logger exposes the underlying logrus instance for libraries that accept one.
func Logger() *logrus.Logger {
	return logger
}

func parseLevel(level string) logrus.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	case "FATAL":
		// logged at error level so LogJSON never exits the process
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
