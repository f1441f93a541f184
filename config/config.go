package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting sourced from environment variables.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	GinMode     string `envconfig:"GIN_MODE" default:"debug"`

	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"3306"`
	DBDatabase string `envconfig:"DB_DATABASE" required:"true"`
	DBUsername string `envconfig:"DB_USERNAME" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DebugSQL   bool   `envconfig:"DEBUG_SQL" default:"false"`

	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireHours int    `envconfig:"JWT_EXPIRE_HOURS" default:"24"`

	UploadPath string `envconfig:"UPLOAD_PATH" default:"./uploads"`

	SMTPHost          string `envconfig:"SMTP_HOST"`
	SMTPPort          int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser          string `envconfig:"SMTP_USER"`
	SMTPPass          string `envconfig:"SMTP_PASS"`
	SMTPFrom          string `envconfig:"SMTP_FROM"` // e.g. "Journal Editorial Office <no-reply@your.org>"
	SMTPSkipTLSVerify bool   `envconfig:"SMTP_SKIP_TLS_VERIFY" default:"false"`

	// Cron expression for the overdue-review reminder job.
	ReminderSchedule string `envconfig:"REMINDER_SCHEDULE" default:"0 7 * * *"`

	// Registrant prefix used when minting DOIs, e.g. "10.5281".
	DOIPrefix string `envconfig:"DOI_PREFIX" default:"10.71828"`
	// Journal token embedded in generated DOI suffixes.
	DOIJournalCode string `envconfig:"DOI_JOURNAL_CODE" default:"jms"`

	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`
}

// DSN returns the MySQL data source name.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUsername,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBDatabase,
	)
}

// Load reads .env (when present) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
