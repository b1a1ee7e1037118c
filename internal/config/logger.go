package config

import (
    "os"

    "github.com/sirupsen/logrus"
)

// NewLogger returns a JSON logrus logger writing to stdout. Unknown level
// names fall back to info.
func NewLogger(level string) *logrus.Logger {
    l := logrus.New()
    l.SetFormatter(&logrus.JSONFormatter{})
    l.SetOutput(os.Stdout)
    lvl, err := logrus.ParseLevel(level)
    if err != nil {
        lvl = logrus.InfoLevel
    }
    l.SetLevel(lvl)
    return l
}

// LogError records an internal failure with the place it happened.
func LogError(logger logrus.FieldLogger, moduleName, funcName, context string, data any, err error) {
    fields := logrus.Fields{
        "module":   moduleName,
        "funcName": funcName,
        "context":  context,
    }
    if data != nil {
        fields["data"] = data
    }
    msg := "<nil>"
    if err != nil {
        msg = err.Error()
    }
    logger.WithFields(fields).Error(msg)
}
