package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper). Resolved once at
// startup and passed into constructors; business logic never reads env.
type Config struct {
	Env               string
	Port              string
	DatabaseURL       string
	RedisURL          string
	SessionSecret     string // signs admin_session cookies and preview tokens
	AdminEmail        string
	AdminPasswordHash string // bcrypt hash of the single admin password
	UploadsDir        string // filesystem root for stored assets
	ClientBase        string // public site base for preview/published links
	BrevoAPIKey       string
	MailFrom          string
	HealthAdminKey    string
	AllowedOrigin     string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "5002"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	uploadsDir := viper.GetString("UPLOADS_DIR")
	if uploadsDir == "" {
		uploadsDir = "uploads"
	}

	return &Config{
		Env:               env,
		Port:              port,
		DatabaseURL:       viper.GetString("DATABASE_URL"),
		RedisURL:          viper.GetString("REDIS_URL"),
		SessionSecret:     viper.GetString("SESSION_SECRET"),
		AdminEmail:        viper.GetString("ADMIN_EMAIL"),
		AdminPasswordHash: viper.GetString("ADMIN_PASSWORD_HASH"),
		UploadsDir:        uploadsDir,
		ClientBase:        strings.TrimRight(viper.GetString("CLIENT_BASE"), "/"),
		BrevoAPIKey:       viper.GetString("BREVO_API_KEY"),
		MailFrom:          viper.GetString("MAIL_FROM"),
		HealthAdminKey:    viper.GetString("HEALTH_ADMIN_KEY"),
		AllowedOrigin:     viper.GetString("ALLOWED_ORIGIN"),
	}, nil
}
