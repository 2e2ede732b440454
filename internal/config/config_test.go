package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newTestViper())
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, 8*time.Second, cfg.Throttle.MinInterval)
	require.Equal(t, []string{"en", "en-US", "it"}, cfg.Fetch.Languages)
	require.Equal(t, "libsql", cfg.Store.Driver)
	require.Equal(t, "cache.sqlite3", cfg.Store.Path)
	require.Equal(t, "log/transcripts", cfg.Artifacts.Dir)
	require.Equal(t, "log/operations.log", cfg.Logging.OpsLog.Path)
	require.Empty(t, cfg.Cache.Redis.Addr, "hot tier is off by default")
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	v := newTestViper()
	v.Set("server.port", 9001)
	v.Set("throttle.min_interval", "15s")
	v.Set("fetch.languages", "de,fr")
	v.Set("cache.redis.addr", "localhost:6379")

	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, 15*time.Second, cfg.Throttle.MinInterval)
	require.Equal(t, []string{"de", "fr"}, cfg.Fetch.Languages)
	require.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
}

func TestLoadInstallsActiveConfig(t *testing.T) {
	v := newTestViper()
	v.Set("server.port", 9002)

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Same(t, cfg, GetConfig())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(v *viper.Viper)
		wantErr string
	}{
		{
			name:    "port out of range",
			mutate:  func(v *viper.Viper) { v.Set("server.port", 70000) },
			wantErr: "out of range",
		},
		{
			name:    "negative throttle interval",
			mutate:  func(v *viper.Viper) { v.Set("throttle.min_interval", "-1s") },
			wantErr: "must not be negative",
		},
		{
			name:    "implausible throttle interval",
			mutate:  func(v *viper.Viper) { v.Set("throttle.min_interval", "25h") },
			wantErr: "implausibly large",
		},
		{
			name:    "unsupported driver",
			mutate:  func(v *viper.Viper) { v.Set("store.driver", "postgres") },
			wantErr: "unsupported store driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper()
			tt.mutate(v)
			_, err := Load(v)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
