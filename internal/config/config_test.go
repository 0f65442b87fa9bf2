package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		UserID:     "local",
		Timezone:   "UTC",
		Deployment: DeploymentLocal,
		Gateway:    GatewayDirect,
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "studytrack",
			Username: "user",
		},
		Local: LocalConfig{
			Path: filepath.Join("data", "studytrack.db"),
		},
		Bridge: BridgeConfig{
			Port:    8765,
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Sync: SyncConfig{
			ProbeInterval: 30 * time.Second,
			ProbeAttempts: 3,
		},
		Scheduling: SchedulingConfig{
			MasteryThreshold: 5,
		},
		Gamification: GamificationConfig{
			BasePoints:       10,
			ComboWindow:      5 * time.Minute,
			ExperienceBase:   100,
			ExperienceGrowth: 1.5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func TestConfigLoader_Load(t *testing.T) {
	profilesDir := t.TempDir()
	profilesFile := filepath.Join(profilesDir, "profiles.yml")
	require.NoError(t, os.WriteFile(profilesFile, []byte("cram: {}\n"), 0644))

	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		want              *Config
		wantErrorContains []string
	}{
		{
			name: "no config file uses defaults",
			want: defaultConfig(),
		},
		{
			name: "valid config file with custom values",
			configContent: `user_id: alice
timezone: Asia/Tokyo
deployment: cloud
gateway: bridge
bridge:
  url: http://127.0.0.1:9000
  timeout: 3s
sync:
  probe_interval: 1m
  probe_attempts: 5
  online_check_host: example.com
scheduling:
  mastery_threshold: 7
gamification:
  base_points: 20
  combo_window: 2m
log:
  level: debug
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.UserID = "alice"
				cfg.Timezone = "Asia/Tokyo"
				cfg.Deployment = DeploymentCloud
				cfg.Gateway = GatewayBridge
				cfg.Bridge.URL = "http://127.0.0.1:9000"
				cfg.Bridge.Timeout = 3 * time.Second
				cfg.Sync.ProbeInterval = time.Minute
				cfg.Sync.ProbeAttempts = 5
				cfg.Sync.OnlineCheckHost = "example.com"
				cfg.Scheduling.MasteryThreshold = 7
				cfg.Gamification.BasePoints = 20
				cfg.Gamification.ComboWindow = 2 * time.Minute
				cfg.Log.Level = "debug"
				return cfg
			}(),
		},
		{
			name: "explicit config file path with profiles file",
			configContent: `scheduling:
  profiles_file: ` + profilesFile + `
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Scheduling.ProfilesFile = profilesFile
				return cfg
			}(),
		},
		{
			name:            "secrets are read from the environment",
			configContent:   "user_id: bob\n",
			useExplicitPath: true,
			env: map[string]string{
				"DB_PASSWORD":          "secret",
				"STUDYTRACK_REDIS_URL": "redis://localhost:6379/0",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.UserID = "bob"
				cfg.Database.Password = "secret"
				cfg.Cache.RedisURL = "redis://localhost:6379/0"
				return cfg
			}(),
		},
		{
			name:              "invalid yaml",
			configContent:     "user_id: [unclosed\n",
			useExplicitPath:   true,
			wantErrorContains: []string{"configuration file found but could not be read"},
		},
		{
			name: "invalid values",
			configContent: `deployment: hybrid
timezone: Mars/Olympus
scheduling:
  mastery_threshold: 0
  profiles_file: /does/not/exist.yml
`,
			useExplicitPath: true,
			wantErrorContains: []string{
				"invalid configuration",
				"deployment",
				"timezone must be an IANA time zone name",
				"mastery_threshold",
				"scheduling.profiles_file must be an existing and readable file",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			tempDir := t.TempDir()

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "studytrack.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644))
				}
				t.Chdir(tempDir)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if len(tt.wantErrorContains) > 0 {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := Config{Timezone: "Asia/Tokyo"}
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())

	cfg.Timezone = "Nowhere/Special"
	assert.Equal(t, time.UTC, cfg.Location())
}
