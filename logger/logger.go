package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/nijaru/yt-transcript/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. When cfg.LogFile is set, entries are written
// to stdout and to a rotating file.
func New(cfg *config.Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "parsing log level")
	}

	log := logrus.New()
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if cfg.LogFile == "" {
		log.SetOutput(os.Stdout)
		return log, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "creating log directory")
	}

	logFile := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))

	return log, nil
}
