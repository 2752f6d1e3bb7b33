package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	WhatsApp WhatsAppConfig
	Google   GoogleConfig
	Schedule ScheduleConfig
	AI       AIConfig
	MongoDB  MongoDBConfig
	Company  CompanyConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	ManagerID     string
	Autopilot     bool
}

// Enabled reports whether outbound messaging is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != ""
}

// GoogleConfig contains the service account and targets for Drive backups and Sheets exports.
type GoogleConfig struct {
	CredentialsPath string
	DriveFolderID   string
	DriveFileName   string
	RepasseSheetID  string
}

// DriveEnabled reports whether Drive backups can run.
func (c GoogleConfig) DriveEnabled() bool {
	return c.CredentialsPath != ""
}

// SheetsEnabled reports whether the transfer list can be exported to a spreadsheet.
func (c GoogleConfig) SheetsEnabled() bool {
	return c.CredentialsPath != "" && c.RepasseSheetID != ""
}

// ScheduleConfig holds scheduler-related settings.
type ScheduleConfig struct {
	BackupCron string
	ReportCron string
	Timezone   string
}

// Location loads the configured timezone.
func (c ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// AIConfig holds settings for the assistant's LLM provider.
type AIConfig struct {
	OpenRouterKey string
	Model         string
}

// Enabled reports whether the assistant has a provider.
func (c AIConfig) Enabled() bool {
	return c.OpenRouterKey != ""
}

// MongoDBConfig holds settings for MongoDB. An empty URI keeps the state in memory.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// CompanyConfig identifies the agency on receipts and statements.
type CompanyConfig struct {
	Name   string
	Doc    string
	PixKey string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
			Autopilot:     getenvBool("WHATSAPP_AUTOPILOT", false),
		},
		Google: GoogleConfig{
			CredentialsPath: os.Getenv("GOOGLE_CREDENTIALS_PATH"),
			DriveFolderID:   os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
			DriveFileName:   getenvWithDefault("GOOGLE_DRIVE_FILE_NAME", "jobh_manager_state.json"),
			RepasseSheetID:  os.Getenv("GOOGLE_SHEET_REPASSE_ID"),
		},
		Schedule: ScheduleConfig{
			BackupCron: getenvWithDefault("BACKUP_CRON_SCHEDULE", "0 3 * * *"),
			ReportCron: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:   getenvWithDefault("TIMEZONE", "America/Sao_Paulo"),
		},
		AI: AIConfig{
			OpenRouterKey: os.Getenv("OPENROUTER_API_KEY"),
			Model:         os.Getenv("AI_MODEL"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "imoveis"),
		},
		Company: CompanyConfig{
			Name:   getenvWithDefault("COMPANY_NAME", "Jobh Imóveis"),
			Doc:    getenvWithDefault("COMPANY_DOC", "CRECI-RJ: 31.387"),
			PixKey: os.Getenv("COMPANY_PIX_KEY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Google.DriveFileName == "" {
		return errors.New("GOOGLE_DRIVE_FILE_NAME must not be empty")
	}

	if c.Schedule.BackupCron == "" {
		return errors.New("BACKUP_CRON_SCHEDULE must be provided")
	}

	if c.Schedule.ReportCron == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Schedule.Timezone, err)
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
