package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. Call Init before using it.
var Log = logrus.New()

func Init() {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{})
	Log.SetLevel(logrus.InfoLevel)
}
