package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// appFieldHook stamps every entry with the emitting binary, so server and CLI
// output can share a sink.
type appFieldHook struct {
	app string
}

func (h appFieldHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h appFieldHook) Fire(entry *logrus.Entry) error {
	entry.Data["app"] = h.app
	return nil
}

// parseLogLevel reads a LOG_LEVEL value. Blank means info. The bool reports
// whether the value was understood.
func parseLogLevel(raw string) (logrus.Level, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return logrus.InfoLevel, true
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return logrus.InfoLevel, false
	}
	return level, true
}

func logFormatter(format string) logrus.Formatter {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}

// InitLogger configures the shared Logger for appName from LOG_LEVEL and
// LOG_FORMAT ("text" or "json"). Calling it again replaces the app field.
func InitLogger(appName string) {
	configureLogger(os.Stdout, appName, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

func configureLogger(out io.Writer, appName, level, format string) {
	Logger.SetOutput(out)
	Logger.SetFormatter(logFormatter(format))
	Logger.ReplaceHooks(logrus.LevelHooks{})
	Logger.AddHook(appFieldHook{app: appName})

	lvl, ok := parseLogLevel(level)
	Logger.SetLevel(lvl)
	if !ok {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", level)
	}
}
