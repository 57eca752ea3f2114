package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modscan.dev/pkg/modscan/internal/adapter"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "modscan", configBaseName)
	assert.Equal(t, "modscan.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "no-cache", noCacheFlagName)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "parallel", runParallelFlagName)
	assert.Equal(t, "run.parallel", runParallelConfigKey)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, "results", defaultOutputDir)
	assert.Equal(t, false, defaultNoCache)
	assert.Equal(t, 1, defaultRunParallel)
	assert.Equal(t, "MODSCAN", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestConfigDefaults(t *testing.T) {
	// Rebind the shared keys to flags no earlier test has set.
	newRootCmd()
	newRunCmd()

	assert.Equal(t, "dotnet", viper.GetString(analyzerPathKey))
	assert.Equal(t, ".cs", viper.GetString(analyzerExtKey))
	assert.Equal(t, "utf-8", viper.GetString(analyzerEncodingKey))
	assert.Equal(t, "pdf", viper.GetString(reportFormatKey))
	assert.InDelta(t, 792.0, viper.GetFloat64(reportPageWidthKey), 1e-9)
	assert.InDelta(t, 15.0, viper.GetFloat64(reportLineHeightKey), 1e-9)
	assert.True(t, viper.GetBool(runLooseReportsKey))
	assert.Zero(t, viper.GetDuration(analyzerTimeoutKey))
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}

func TestS3ConfigFromViper(t *testing.T) {
	t.Setenv("MODSCAN_PUBLISH_S3_BUCKET", "reports")
	t.Setenv("MODSCAN_PUBLISH_S3_PREFIX", "nightly")
	t.Setenv("MODSCAN_PUBLISH_S3_ENDPOINT", "localhost:9000")

	cfg := s3ConfigFromViper()

	assert.Equal(t, adapter.S3Config{
		Endpoint: "localhost:9000",
		Bucket:   "reports",
		Prefix:   "nightly",
		UseSSL:   true,
	}, cfg)
	assert.True(t, cfg.Enabled())
}

func TestNewPublisher(t *testing.T) {
	t.Run("disabled without a bucket", func(t *testing.T) {
		publisher, err := newPublisher()
		require.NoError(t, err)
		assert.Nil(t, publisher)
	})

	t.Run("bucket without credentials is an error", func(t *testing.T) {
		t.Setenv("MODSCAN_PUBLISH_S3_BUCKET", "reports")
		t.Setenv("MODSCAN_PUBLISH_S3_ENDPOINT", "localhost:9000")

		_, err := newPublisher()
		require.Error(t, err)
	})

	t.Run("configured", func(t *testing.T) {
		t.Setenv("MODSCAN_PUBLISH_S3_BUCKET", "reports")
		t.Setenv("MODSCAN_PUBLISH_S3_ENDPOINT", "localhost:9000")
		t.Setenv("MODSCAN_PUBLISH_S3_ACCESS_KEY", "minio")
		t.Setenv("MODSCAN_PUBLISH_S3_SECRET_KEY", "minio123")

		publisher, err := newPublisher()
		require.NoError(t, err)
		assert.NotNil(t, publisher)
	})
}

func TestMissingConfig(t *testing.T) {
	_, statErr := os.Stat(filepath.Join(t.TempDir(), configFileName))

	assert.True(t, missingConfig(statErr))
	assert.True(t, missingConfig(viper.ConfigFileNotFoundError{}))
	assert.False(t, missingConfig(errors.New("yaml: line 2: mapping values are not allowed in this context")))
}

func TestConfigureLogger_ReportsUnreadableConfig(t *testing.T) {
	original := configReadErr
	t.Cleanup(func() { configReadErr = original })

	configReadErr = errors.New("yaml: line 2: mapping values are not allowed in this context")
	logPath := filepath.Join(t.TempDir(), "modscan.log")

	configureLogger(logPath, false)

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Ignoring unreadable config file")
	assert.Contains(t, string(content), "mapping values are not allowed")
}
