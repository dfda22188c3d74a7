package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DocumentStorePostgres, cfg.DocumentStore)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, 72*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Equal(t, "none", cfg.TracingExporter)
	assert.InDelta(t, 1.0, cfg.TracingSampleRate, 0)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("DOCUMENT_STORE", "mongo")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("EMAIL_PROVIDER", "ses")
	t.Setenv("AWS_REGION", "ap-south-1")
	t.Setenv("TRACING_EXPORTER", "otlp")
	t.Setenv("TRACING_SAMPLE_RATE", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, DocumentStoreMongo, cfg.DocumentStore)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "ses", cfg.Email.Provider)
	assert.Equal(t, "ap-south-1", cfg.Email.AWSRegion)
	assert.InDelta(t, 0.25, cfg.TracingSampleRate, 1e-9)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown document store", map[string]string{"DOCUMENT_STORE": "redis"}, "DOCUMENT_STORE"},
		{"unknown exporter", map[string]string{"TRACING_EXPORTER": "zipkin"}, "TRACING_EXPORTER"},
		{"sample rate out of range", map[string]string{"TRACING_SAMPLE_RATE": "2"}, "TRACING_SAMPLE_RATE"},
		{"two catalog sources", map[string]string{"CATALOG_FILE": "a.yaml", "CATALOG_URL": "http://x"}, "CATALOG_FILE"},
		{"production without secret", map[string]string{"GO_ENV": "production"}, "JWT_SECRET"},
		{"malformed duration", map[string]string{"JWT_EXPIRY": "soon"}, "JWT_EXPIRY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", "test")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
