package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Config_Enabled(t *testing.T) {
	assert.False(t, S3Config{}.Enabled())
	assert.True(t, S3Config{Bucket: "reports"}.Enabled())
}

func TestNewS3Publisher_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
	}{
		{"missing endpoint", S3Config{AccessKey: "a", SecretKey: "s", Bucket: "b"}},
		{"missing credentials", S3Config{Endpoint: "localhost:9000", Bucket: "b"}},
		{"missing bucket", S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Publisher(tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestS3Publisher_ObjectKey(t *testing.T) {
	publisher, err := NewS3Publisher(S3Config{
		Endpoint:  "localhost:9000",
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "reports",
		Prefix:    "/nightly/",
	})
	require.NoError(t, err)

	assert.Equal(t, "nightly/final_static_analysis_report.pdf", publisher.ObjectKey("final_static_analysis_report.pdf"))
}
