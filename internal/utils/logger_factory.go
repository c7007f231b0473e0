package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	jsonZapEncodingConstant              = "json"
	consoleZapEncodingConstant           = "console"
	standardErrorOutputPathConstant      = "stderr"
	consoleTimeKeyConstant               = ""
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	loggerBuildErrorTemplateConstant     = "unable to build logger: %w"
)

// LogLevel enumerates the supported logging granularities.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates the supported logger encodings.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingConstant,
	LogFormatConsole:    consoleZapEncodingConstant,
}

// SupportedLogFormats lists the formats accepted by CreateLogger in display order.
func SupportedLogFormats() []string {
	return []string{string(LogFormatStructured), string(LogFormatConsole)}
}

// ParseLogLevel normalizes a user supplied level name.
func ParseLogLevel(rawLevel string) (LogLevel, error) {
	candidateLevel := LogLevel(strings.ToLower(strings.TrimSpace(rawLevel)))
	if _, supported := logLevelMapping[candidateLevel]; !supported {
		return "", fmt.Errorf(unsupportedLogLevelTemplateConstant, rawLevel)
	}
	return candidateLevel, nil
}

// ParseLogFormat normalizes a user supplied format name.
func ParseLogFormat(rawFormat string) (LogFormat, error) {
	candidateFormat := LogFormat(strings.ToLower(strings.TrimSpace(rawFormat)))
	if _, supported := logFormatEncodingMapping[candidateFormat]; !supported {
		return "", fmt.Errorf(unsupportedLogFormatTemplateConstant, rawFormat)
	}
	return candidateFormat, nil
}

// LoggerFactory builds zap loggers writing to standard error.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger for the requested level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[requestedLogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding
	configuration.OutputPaths = []string{standardErrorOutputPathConstant}
	configuration.ErrorOutputPaths = []string{standardErrorOutputPathConstant}
	configuration.DisableStacktrace = true
	if requestedLogFormat == LogFormatConsole {
		configuration.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		configuration.EncoderConfig.TimeKey = consoleTimeKeyConstant
		configuration.DisableCaller = true
	}

	logger, buildError := configuration.Build()
	if buildError != nil {
		return nil, fmt.Errorf(loggerBuildErrorTemplateConstant, buildError)
	}
	return logger, nil
}
