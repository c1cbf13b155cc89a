/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package log

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

import (
	"github.com/natefinch/lumberjack"

	"github.com/pkg/errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	// LogLevel represents the level of logging.
	LogLevel int8
	// LogType represents the type of logging.
	LogType string
)

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in
	// production.
	DebugLevel = LogLevel(zapcore.DebugLevel)
	// InfoLevel is the default logging priority.
	InfoLevel = LogLevel(zapcore.InfoLevel)
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel = LogLevel(zapcore.WarnLevel)
	// ErrorLevel logs are high-priority.
	ErrorLevel = LogLevel(zapcore.ErrorLevel)
	// PanicLevel logs a message, then panics.
	PanicLevel = LogLevel(zapcore.PanicLevel)
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel = LogLevel(zapcore.FatalLevel)

	_minLevel = DebugLevel
	_maxLevel = FatalLevel

	MainLog    = LogType("main")
	CompileLog = LogType("compile")

	defaultLoggerLevel = InfoLevel
)

// LoggingConfig configures the loggers. Without a log path, logs are only written to the console.
type LoggingConfig struct {
	LogName           string `yaml:"log_name" json:"log_name" default:"formula.log"`
	LogPath           string `yaml:"log_path" json:"log_path"`
	LogLevel          int    `yaml:"log_level" json:"log_level"`
	LogMaxSize        int    `yaml:"log_max_size" json:"log_max_size" default:"10"`
	LogMaxBackups     int    `yaml:"log_max_backups" json:"log_max_backups" default:"5"`
	LogMaxAge         int    `yaml:"log_max_age" json:"log_max_age" default:"30"`
	LogCompress       bool   `yaml:"log_compress" json:"log_compress"`
	CompileLogEnabled bool   `yaml:"compile_log_enabled" json:"compile_log_enabled"`
	CompileLogName    string `yaml:"compile_log_name" json:"compile_log_name" default:"compile.log"`
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	if l == nil {
		return errors.New("can't unmarshal a nil *Level")
	}
	if !l.unmarshalText(text) && !l.unmarshalText(bytes.ToLower(text)) {
		return errors.Errorf("unrecognized level: %q", text)
	}
	return nil
}

func (l *LogLevel) unmarshalText(text []byte) bool {
	switch string(text) {
	case "debug", "DEBUG":
		*l = DebugLevel
	case "info", "INFO", "": // make the zero value useful
		*l = InfoLevel
	case "warn", "WARN":
		*l = WarnLevel
	case "error", "ERROR":
		*l = ErrorLevel
	case "panic", "PANIC":
		*l = PanicLevel
	case "fatal", "FATAL":
		*l = FatalLevel
	default:
		return false
	}
	return true
}

type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Panic(v ...interface{})
	Panicf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
}

var (
	globalLogger *compositeLogger

	// console output, stdout is kept for the results of the commands
	console io.Writer = os.Stderr

	defaultLoggingConfig = &LoggingConfig{
		LogName:        "formula.log",
		LogLevel:       int(InfoLevel),
		LogMaxSize:     10,
		LogMaxBackups:  5,
		LogMaxAge:      30,
		CompileLogName: "compile.log",
	}
)

func init() {
	globalLogger = NewCompositeLogger(defaultLoggingConfig)
}

// Init replaces the global logger.
func Init(cfg *LoggingConfig) {
	if cfg == nil {
		cfg = defaultLoggingConfig
	}
	globalLogger = NewCompositeLogger(cfg)
}

type compositeLogger struct {
	loggerCfg *LoggingConfig

	mainLog    *zap.SugaredLogger
	compileLog *zap.SugaredLogger
}

var _ Logger = (*compositeLogger)(nil)

func NewCompositeLogger(cfg *LoggingConfig) *compositeLogger {
	c := &compositeLogger{
		loggerCfg: cfg,
		mainLog:   NewLogger(MainLog, cfg),
	}
	if cfg.CompileLogEnabled {
		c.compileLog = NewLogger(CompileLog, cfg)
	}
	return c
}

// NewLogger creates the logger of the type, written to the console and,
// if a log path is configured, to a rotated file.
func NewLogger(logType LogType, cfg *LoggingConfig) *zap.SugaredLogger {
	syncers := []zapcore.WriteSyncer{zapcore.AddSync(console)}
	if len(cfg.LogPath) > 0 {
		syncers = append(syncers, zapcore.AddSync(buildLumberJack(cfg.LogPath, logType, cfg)))
	}
	syncer := zapcore.NewMultiWriteSyncer(syncers...)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	encoder := zapcore.NewConsoleEncoder(encoderConfig)
	level := zap.DebugLevel
	if logType == MainLog {
		level = getLoggerLevel(cfg.LogLevel)
	}
	core := zapcore.NewCore(encoder, syncer, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()
}

func buildLumberJack(logPath string, logType LogType, cfg *LoggingConfig) *lumberjack.Logger {
	var logName string
	switch logType {
	case CompileLog:
		logName = cfg.CompileLogName
	default:
		logName = cfg.LogName
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(logPath, logName),
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}
}

func getLoggerLevel(level int) zapcore.Level {
	logLevel := LogLevel(level)
	if logLevel < _minLevel || logLevel > _maxLevel {
		return zapcore.Level(defaultLoggerLevel)
	}
	return zapcore.Level(logLevel)
}

func (c *compositeLogger) Debug(v ...interface{}) {
	c.mainLog.Debug(v...)
}

func (c *compositeLogger) Debugf(format string, v ...interface{}) {
	c.mainLog.Debugf(format, v...)
}

func (c *compositeLogger) Info(v ...interface{}) {
	c.mainLog.Info(v...)
}

func (c *compositeLogger) Infof(format string, v ...interface{}) {
	c.mainLog.Infof(format, v...)
}

func (c *compositeLogger) Warn(v ...interface{}) {
	c.mainLog.Warn(v...)
}

func (c *compositeLogger) Warnf(format string, v ...interface{}) {
	c.mainLog.Warnf(format, v...)
}

func (c *compositeLogger) Error(v ...interface{}) {
	c.mainLog.Error(v...)
}

func (c *compositeLogger) Errorf(format string, v ...interface{}) {
	c.mainLog.Errorf(format, v...)
}

func (c *compositeLogger) Panic(v ...interface{}) {
	c.mainLog.Panic(v...)
}

func (c *compositeLogger) Panicf(format string, v ...interface{}) {
	c.mainLog.Panicf(format, v...)
}

func (c *compositeLogger) Fatal(v ...interface{}) {
	c.mainLog.Fatal(v...)
}

func (c *compositeLogger) Fatalf(format string, v ...interface{}) {
	c.mainLog.Fatalf(format, v...)
}

// compilef writes the main log, and the compile log if it is enabled.
func (c *compositeLogger) compilef(level zapcore.Level, format string, v ...interface{}) {
	logs := []*zap.SugaredLogger{c.mainLog}
	if c.compileLog != nil {
		logs = append(logs, c.compileLog)
	}
	for _, it := range logs {
		switch level {
		case zapcore.DebugLevel:
			it.Debugf(format, v...)
		case zapcore.InfoLevel:
			it.Infof(format, v...)
		case zapcore.WarnLevel:
			it.Warnf(format, v...)
		default:
			it.Errorf(format, v...)
		}
	}
}

func (c *compositeLogger) Sync() error {
	var err error
	for _, it := range []*zap.SugaredLogger{c.mainLog, c.compileLog} {
		if it != nil {
			err = multierr.Append(err, it.Sync())
		}
	}
	return err
}

// Debug ...
func Debug(v ...interface{}) {
	globalLogger.Debug(v...)
}

// Debugf ...
func Debugf(format string, v ...interface{}) {
	globalLogger.Debugf(format, v...)
}

// Info ...
func Info(v ...interface{}) {
	globalLogger.Info(v...)
}

// Infof ...
func Infof(format string, v ...interface{}) {
	globalLogger.Infof(format, v...)
}

// Warn ...
func Warn(v ...interface{}) {
	globalLogger.Warn(v...)
}

// Warnf ...
func Warnf(format string, v ...interface{}) {
	globalLogger.Warnf(format, v...)
}

// Error ...
func Error(v ...interface{}) {
	globalLogger.Error(v...)
}

// Errorf ...
func Errorf(format string, v ...interface{}) {
	globalLogger.Errorf(format, v...)
}

// Panic ...
func Panic(v ...interface{}) {
	globalLogger.Panic(v...)
}

// Panicf ...
func Panicf(format string, v ...interface{}) {
	globalLogger.Panicf(format, v...)
}

// Fatal ...
func Fatal(v ...interface{}) {
	globalLogger.Fatal(v...)
}

// Fatalf ...
func Fatalf(format string, v ...interface{}) {
	globalLogger.Fatalf(format, v...)
}

// CompileDebugf logs a compilation at debug level, also into the compile log.
func CompileDebugf(format string, v ...interface{}) {
	globalLogger.compilef(zapcore.DebugLevel, format, v...)
}

// CompileWarnf logs a rejected compilation, also into the compile log.
func CompileWarnf(format string, v ...interface{}) {
	globalLogger.compilef(zapcore.WarnLevel, format, v...)
}

// Sync flushes the buffered logs.
func Sync() error {
	return globalLogger.Sync()
}
