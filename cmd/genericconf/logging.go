// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package genericconf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/natefinch/lumberjack.v2"

	flag "github.com/spf13/pflag"
)

type FileLoggingConfig struct {
	Enable     bool   `koanf:"enable"`
	File       string `koanf:"file"`
	MaxSize    int    `koanf:"max-size"`
	MaxAge     int    `koanf:"max-age"`
	MaxBackups int    `koanf:"max-backups"`
	LocalTime  bool   `koanf:"local-time"`
	Compress   bool   `koanf:"compress"`
}

var DefaultFileLoggingConfig = FileLoggingConfig{
	Enable:     false,
	File:       "timelock-guard.log",
	MaxSize:    5,     // Mb
	MaxAge:     0,     // don't remove old files based on age
	MaxBackups: 20,    // keep 20 files
	LocalTime:  false, // use UTC time
	Compress:   true,
}

func FileLoggingConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.Bool(prefix+".enable", DefaultFileLoggingConfig.Enable, "enable logging to file")
	f.String(prefix+".file", DefaultFileLoggingConfig.File, "path to log file")
	f.Int(prefix+".max-size", DefaultFileLoggingConfig.MaxSize, "log file size in Mb that will trigger log file rotation (0 = trigger disabled)")
	f.Int(prefix+".max-age", DefaultFileLoggingConfig.MaxAge, "maximum number of days to retain old log files based on the timestamp encoded in their filename (0 = no limit)")
	f.Int(prefix+".max-backups", DefaultFileLoggingConfig.MaxBackups, "maximum number of old log files to retain (0 = no limit)")
	f.Bool(prefix+".local-time", DefaultFileLoggingConfig.LocalTime, "if true: local time will be used in old log filename timestamps")
	f.Bool(prefix+".compress", DefaultFileLoggingConfig.Compress, "enable compression of old log files")
}

// HandlerFromLogType constructs the slog handler for the given output
// format; valid types are "plaintext" and "json".
func HandlerFromLogType(logType string, output io.Writer) (slog.Handler, error) {
	if logType == "plaintext" {
		return log.NewTerminalHandler(output, false), nil
	} else if logType == "json" {
		return log.JSONHandler(output), nil
	}
	return nil, fmt.Errorf("invalid log type %q", logType)
}

// ToSlogLevel parses a log level given either as a name (TRACE through CRIT)
// or as a legacy numeric verbosity.
func ToSlogLevel(str string) (slog.Level, error) {
	if legacy, err := strconv.Atoi(str); err == nil {
		return log.FromLegacyLevel(legacy), nil
	}
	switch strings.ToUpper(str) {
	case "TRACE":
		return log.LevelTrace, nil
	case "DEBUG":
		return log.LevelDebug, nil
	case "INFO":
		return log.LevelInfo, nil
	case "WARN":
		return log.LevelWarn, nil
	case "ERROR":
		return log.LevelError, nil
	case "CRIT":
		return log.LevelCrit, nil
	default:
		return log.LevelInfo, errors.New("invalid log level")
	}
}

// fileLogger serializes writes to a lumberjack rotating log; InitLog closes
// and replaces the previous instance on reload.
type fileLogger struct {
	mutex  sync.Mutex
	writer *lumberjack.Logger
}

var globalFileLogger = &fileLogger{}

func (l *fileLogger) Write(p []byte) (int, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.writer == nil {
		return len(p), nil
	}
	return l.writer.Write(p)
}

// open is not threadsafe with respect to Write; callers initialize logging
// before any goroutine logs.
func (l *fileLogger) open(config *FileLoggingConfig, filename string) (io.Writer, error) {
	if err := l.close(); err != nil {
		return nil, err
	}
	l.writer = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		LocalTime:  config.LocalTime,
		Compress:   config.Compress,
	}
	return l, nil
}

func (l *fileLogger) close() error {
	if l.writer == nil {
		return nil
	}
	if err := l.writer.Close(); err != nil {
		return err
	}
	l.writer = nil
	return nil
}

// InitLog installs the default logger: stderr, optionally duplicated to a
// rotating file, at the requested level and format.
func InitLog(logType string, logLevel string, fileLoggingConfig *FileLoggingConfig, pathResolver func(string) string) error {
	if err := globalFileLogger.close(); err != nil {
		return fmt.Errorf("failed to close file writer: %w", err)
	}
	output := io.Writer(os.Stderr)
	if fileLoggingConfig.Enable {
		fileWriter, err := globalFileLogger.open(fileLoggingConfig, pathResolver(fileLoggingConfig.File))
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		output = io.MultiWriter(os.Stderr, fileWriter)
	}
	handler, err := HandlerFromLogType(logType, output)
	if err != nil {
		return fmt.Errorf("error parsing log type when creating handler: %w", err)
	}
	slogLevel, err := ToSlogLevel(logLevel)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(slogLevel)
	log.SetDefault(log.NewLogger(glogger))
	return nil
}
