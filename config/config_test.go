package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxpyramid/chatapp/config"
	"github.com/fxpyramid/chatapp/utils"
)

var configEnvVars = []string{
	"CHATAPP_ENDPOINT",
	"CHATAPP_MODEL",
	"CHATAPP_TEMPERATURE",
	"CHATAPP_TIMEOUT",
	"CHATAPP_HISTORY_DIR",
	"CHATAPP_ROLE",
	"CHATAPP_LOG_LEVEL",
}

// clearEnv unsets every chatapp variable and restores it after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://openai.fxpyramid.com/interact/", cfg.Endpoint)
	assert.Equal(t, "gpt-4", cfg.Model)
	assert.Equal(t, 1.0, cfg.Temperature)
	assert.Equal(t, 300*time.Second, cfg.Timeout)
	assert.Equal(t, "history", cfg.HistoryDir)
	assert.Equal(t, "user", cfg.Role)
	assert.Equal(t, utils.LogLevelWarn, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATAPP_MODEL", "gpt-3.5-turbo")
	t.Setenv("CHATAPP_TEMPERATURE", "0.25")
	t.Setenv("CHATAPP_TIMEOUT", "45s")
	t.Setenv("CHATAPP_ROLE", "system")
	t.Setenv("CHATAPP_LOG_LEVEL", "debug")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-turbo", cfg.Model)
	assert.Equal(t, 0.25, cfg.Temperature)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "system", cfg.Role)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  config.ConfigOption
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *config.Config) {},
			wantErr: false,
		},
		{
			name:    "alternate model accepted",
			mutate:  config.SetModel("gpt-3.5-turbo"),
			wantErr: false,
		},
		{
			name:    "unknown model rejected",
			mutate:  config.SetModel("gpt-5-nano"),
			wantErr: true,
		},
		{
			name:    "temperature above range rejected",
			mutate:  config.SetTemperature(2.5),
			wantErr: true,
		},
		{
			name:    "temperature below range rejected",
			mutate:  config.SetTemperature(-0.1),
			wantErr: true,
		},
		{
			name:    "temperature boundary accepted",
			mutate:  config.SetTemperature(2.0),
			wantErr: false,
		},
		{
			name:    "assistant is not a selectable role",
			mutate:  config.SetRole("assistant"),
			wantErr: true,
		},
		{
			name:    "endpoint must be a url",
			mutate:  config.SetEndpoint("not a url"),
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.NewConfig()
			config.ApplyOptions(cfg, tc.mutate)

			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := config.NewConfig()
	config.ApplyOptions(cfg,
		config.SetEndpoint("http://localhost:8080/interact/"),
		config.SetModel("gpt-3.5-turbo"),
		config.SetTemperature(0.7),
		config.SetTimeout(time.Minute),
		config.SetHistoryDir("transcripts"),
		config.SetRole("system"),
		config.SetLogLevel(utils.LogLevelInfo),
	)

	assert.Equal(t, "http://localhost:8080/interact/", cfg.Endpoint)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Model)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, "transcripts", cfg.HistoryDir)
	assert.Equal(t, "system", cfg.Role)
	assert.Equal(t, utils.LogLevelInfo, cfg.LogLevel)
}
