package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"APP_PORT", "LOG_LEVEL", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN",
	"WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION", "WHATSAPP_MANAGER_ID", "WHATSAPP_AUTOPILOT",
	"GOOGLE_CREDENTIALS_PATH", "GOOGLE_DRIVE_FOLDER_ID", "GOOGLE_DRIVE_FILE_NAME",
	"GOOGLE_SHEET_REPASSE_ID", "BACKUP_CRON_SCHEDULE", "REPORT_CRON_SCHEDULE", "TIMEZONE",
	"OPENROUTER_API_KEY", "AI_MODEL", "MONGODB_URI", "MONGODB_DB_NAME",
	"COMPANY_NAME", "COMPANY_DOC", "COMPANY_PIX_KEY",
}

// clearEnv blanks every key for the test; Load treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.Equal(t, "jobh_manager_state.json", cfg.Google.DriveFileName)
	assert.False(t, cfg.Google.DriveEnabled())
	assert.Equal(t, "0 3 * * *", cfg.Schedule.BackupCron)
	assert.Equal(t, "0 20 * * 5", cfg.Schedule.ReportCron)
	assert.Equal(t, "America/Sao_Paulo", cfg.Schedule.Timezone)
	assert.Empty(t, cfg.MongoDB.URI)
	assert.Equal(t, "imoveis", cfg.MongoDB.DBName)
	assert.Equal(t, "Jobh Imóveis", cfg.Company.Name)
	assert.Equal(t, "CRECI-RJ: 31.387", cfg.Company.Doc)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range managedKeys {
		require.NoError(t, os.Unsetenv(k))
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nWHATSAPP_TOKEN=tok\nWHATSAPP_PHONE_NUMBER_ID=123\nMETA_VERIFY_TOKEN=verify\nWHATSAPP_AUTOPILOT=true\nGOOGLE_CREDENTIALS_PATH=/tmp/sa.json\nGOOGLE_SHEET_REPASSE_ID=sheet\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range managedKeys {
			_ = os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.WhatsApp.Enabled())
	assert.True(t, cfg.WhatsApp.Autopilot)
	assert.True(t, cfg.Google.DriveEnabled())
	assert.True(t, cfg.Google.SheetsEnabled())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Google:   GoogleConfig{DriveFileName: "state.json"},
			Schedule: ScheduleConfig{BackupCron: "0 3 * * *", ReportCron: "0 20 * * 5", Timezone: "UTC"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "APP_PORT"},
		{name: "token without phone id", mutate: func(c *Config) { c.WhatsApp.AccessToken = "x" }, wantErr: "WHATSAPP_PHONE_NUMBER_ID"},
		{name: "bad timezone", mutate: func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, wantErr: "TIMEZONE"},
		{name: "mongo without db", mutate: func(c *Config) { c.MongoDB.URI = "mongodb://localhost" }, wantErr: "MONGODB_DB_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
