package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseWith(environment map[string]string) (*Config, error) {
	return Parse(env.Options{Environment: environment})
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parseWith(map[string]string{
		"JWT_SECRET":     "access",
		"REFRESH_SECRET": "refresh",
	})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, "taskmanager-api", cfg.JWTIssuer)
	assert.False(t, cfg.DenylistEnabled())
	assert.Equal(t, DenylistNone, cfg.TokenDenylist)
	assert.Equal(t, time.Minute, cfg.DenylistSweepInterval)
	assert.False(t, cfg.IsRelease())
}

func TestParse_MissingSecrets(t *testing.T) {
	tests := []struct {
		name        string
		environment map[string]string
		missing     string
	}{
		{"no secrets", map[string]string{}, "JWT_SECRET"},
		{"no refresh secret", map[string]string{"JWT_SECRET": "access"}, "REFRESH_SECRET"},
		{"empty access secret", map[string]string{"JWT_SECRET": "", "REFRESH_SECRET": "refresh"}, "JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseWith(tt.environment)
			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, tt.missing)
		})
	}
}

func TestParse_SecretsMustDiffer(t *testing.T) {
	_, err := parseWith(map[string]string{
		"JWT_SECRET":     "same",
		"REFRESH_SECRET": "same",
	})
	assert.ErrorIs(t, err, ErrSecretsNotDistinct)
}

func TestParse_Durations(t *testing.T) {
	cfg, err := parseWith(map[string]string{
		"JWT_SECRET":           "access",
		"REFRESH_SECRET":       "refresh",
		"ACCESS_TOKEN_EXPIRY":  "30m",
		"REFRESH_TOKEN_EXPIRY": "14d",
		"SHUTDOWN_TIMEOUT":     "1d",
	})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 14*24*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, 24*time.Hour, cfg.ShutdownTimeout)
}

func TestParse_InvalidDurations(t *testing.T) {
	for _, value := range []string{"soon", "xd", "0s", "-5m"} {
		_, err := parseWith(map[string]string{
			"JWT_SECRET":          "access",
			"REFRESH_SECRET":      "refresh",
			"ACCESS_TOKEN_EXPIRY": value,
		})
		assert.Error(t, err, "value %q", value)
	}
}

func TestParse_UnknownDriver(t *testing.T) {
	_, err := parseWith(map[string]string{
		"JWT_SECRET":     "access",
		"REFRESH_SECRET": "refresh",
		"DB_DRIVER":      "oracle",
	})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestParse_Redis(t *testing.T) {
	cfg, err := parseWith(map[string]string{
		"JWT_SECRET":     "access",
		"REFRESH_SECRET": "refresh",
		"REDIS_ADDR":     "localhost:6379",
		"REDIS_DB":       "2",
		"GIN_MODE":       "release",
	})
	require.NoError(t, err)

	assert.True(t, cfg.DenylistEnabled())
	assert.Equal(t, DenylistRedis, cfg.TokenDenylist)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.IsRelease())
}

func TestParse_TokenDenylist(t *testing.T) {
	tests := []struct {
		name        string
		environment map[string]string
		want        string
		wantErr     error
	}{
		{"memory", map[string]string{"TOKEN_DENYLIST": "memory"}, DenylistMemory, nil},
		{"memory ignores redis", map[string]string{"TOKEN_DENYLIST": "memory", "REDIS_ADDR": "localhost:6379"}, DenylistMemory, nil},
		{"explicit none", map[string]string{"TOKEN_DENYLIST": "none", "REDIS_ADDR": "localhost:6379"}, DenylistNone, nil},
		{"redis without address", map[string]string{"TOKEN_DENYLIST": "redis"}, "", ErrRedisAddrRequired},
		{"unknown", map[string]string{"TOKEN_DENYLIST": "file"}, "", ErrUnknownDenylist},
		{"zero sweep", map[string]string{"TOKEN_DENYLIST": "memory", "DENYLIST_SWEEP_INTERVAL": "0s"}, "", ErrInvalidSweep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.environment["JWT_SECRET"] = "access"
			tt.environment["REFRESH_SECRET"] = "refresh"

			cfg, err := parseWith(tt.environment)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.TokenDenylist)
			assert.Equal(t, tt.want != DenylistNone, cfg.DenylistEnabled())
		})
	}
}

func TestLoad_FromProcessEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("REFRESH_SECRET", "refresh")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
}
