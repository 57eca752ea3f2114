package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"modscan.dev/pkg/modscan/internal/adapter"
	m "modscan.dev/pkg/modscan/internal/model"
	"modscan.dev/pkg/modscan/internal/render"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "modscan"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName       = "output"
	noCacheFlagName      = "no-cache"
	excludeFlagName      = "exclude"
	verboseFlagName      = "verbose"
	logFileFlagName      = "log-file"
	formatFlagName       = "format"
	fontFlagName         = "font"
	runParallelFlagName  = "parallel"
	analyzerFlagName     = "analyzer"
	analyzerArgFlagName  = "analyzer-arg"
	extensionFlagName    = "ext"
	encodingFlagName     = "encoding"
	timeoutFlagName      = "timeout"
	strictStderrFlagName = "strict-stderr"
	looseReportsFlagName = "loose-reports"

	excludeConfigKey      = "paths.exclude"
	analyzerPathKey       = "analyzer.path"
	analyzerArgsKey       = "analyzer.args"
	analyzerExtKey        = "analyzer.ext"
	analyzerEncodingKey   = "analyzer.encoding"
	analyzerTimeoutKey    = "analyzer.timeout"
	analyzerStrictKey     = "analyzer.strict_stderr"
	runParallelConfigKey  = "run.parallel"
	runLooseReportsKey    = "run.loose_reports"
	reportFormatKey       = "report.format"
	reportFontKey         = "report.font"
	reportPageWidthKey    = "report.page_width"
	reportLineHeightKey   = "report.line_height"
	reportFontSizeKey     = "report.font_size"
	publishEndpointKey    = "publish.s3.endpoint"
	publishRegionKey      = "publish.s3.region"
	publishAccessKeyKey   = "publish.s3.access_key"
	publishSecretKeyKey   = "publish.s3.secret_key"
	publishBucketKey      = "publish.s3.bucket"
	publishPrefixKey      = "publish.s3.prefix"
	publishUseSSLKey      = "publish.s3.use_ssl"
	defaultOutputDir      = "results"
	defaultNoCache        = false
	defaultAnalyzer       = "dotnet"
	defaultExtension      = ".cs"
	defaultEncoding       = "utf-8"
	defaultRunParallel    = 1
	defaultLooseReports   = true
	defaultLineHeight     = 15.0
	defaultReportFontSize = 12.0
	defaultPublishUseSSL  = true

	envPrefix = "MODSCAN"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".modscan.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

// configReadErr holds a config file error from init, reported once the logger
// is configured.
var configReadErr error

func init() {
	// A missing .env file is the common case.
	_ = godotenv.Load()

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultOutputDir)
	viper.SetDefault(noCacheFlagName, defaultNoCache)
	viper.SetDefault(excludeConfigKey, []string{})

	viper.SetDefault(analyzerPathKey, defaultAnalyzer)
	viper.SetDefault(analyzerArgsKey, []string{})
	viper.SetDefault(analyzerExtKey, defaultExtension)
	viper.SetDefault(analyzerEncodingKey, defaultEncoding)
	viper.SetDefault(analyzerTimeoutKey, "0s")
	viper.SetDefault(analyzerStrictKey, false)

	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(runLooseReportsKey, defaultLooseReports)

	viper.SetDefault(reportFormatKey, render.DefaultFormat)
	viper.SetDefault(reportFontKey, "")
	viper.SetDefault(reportPageWidthKey, m.DefaultPageWidth)
	viper.SetDefault(reportLineHeightKey, defaultLineHeight)
	viper.SetDefault(reportFontSizeKey, defaultReportFontSize)

	viper.SetDefault(publishEndpointKey, "")
	viper.SetDefault(publishRegionKey, "")
	viper.SetDefault(publishAccessKeyKey, "")
	viper.SetDefault(publishSecretKeyKey, "")
	viper.SetDefault(publishBucketKey, "")
	viper.SetDefault(publishPrefixKey, "")
	viper.SetDefault(publishUseSSLKey, defaultPublishUseSSL)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil && !missingConfig(err) {
		configReadErr = err
	}
}

// missingConfig reports whether err only says that there is no config file.
func missingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// s3ConfigFromViper collects the publish.s3.* keys.
func s3ConfigFromViper() adapter.S3Config {
	return adapter.S3Config{
		Endpoint:  viper.GetString(publishEndpointKey),
		Region:    viper.GetString(publishRegionKey),
		AccessKey: viper.GetString(publishAccessKeyKey),
		SecretKey: viper.GetString(publishSecretKeyKey),
		Bucket:    viper.GetString(publishBucketKey),
		Prefix:    viper.GetString(publishPrefixKey),
		UseSSL:    viper.GetBool(publishUseSSLKey),
	}
}

// newPublisher returns nil when no bucket is configured.
func newPublisher() (adapter.Publisher, error) {
	cfg := s3ConfigFromViper()
	if !cfg.Enabled() {
		return nil, nil
	}

	publisher, err := adapter.NewS3Publisher(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("Publishing reports to S3", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "prefix", cfg.Prefix)

	return publisher, nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	if configReadErr != nil {
		slog.Warn("Ignoring unreadable config file; using defaults", "file", viper.ConfigFileUsed(), "error", configReadErr)
	}
}
