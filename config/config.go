package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	ServerPort    int
	AppURL        string
	ShellPath     string
	SessionSecret string
	EmailDomain   string
	Database      DatabaseConfig
	Mail          MailConfig
	Events        EventsConfig
	Storage       StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// MailConfig selects and configures the verification-mail transport.
// Provider is one of "smtp", "brevo", or "log".
type MailConfig struct {
	Provider    string
	From        string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	BrevoAPIKey string
}

// EventsConfig selects the optional domain-event broker.
// Backend is one of "none", "rabbitmq", or "pubsub".
type EventsConfig struct {
	Backend               string
	RabbitURL             string
	PubSubProjectID       string
	PubSubCredentialsFile string
}

// StorageConfig selects the optional attachment object store.
// Backend is one of "none", "minio", or "gcs".
type StorageConfig struct {
	Backend            string
	Bucket             string
	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioUseSSL        bool
	GCSProjectID       string
	GCSCredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "kbuhub"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "kbuhub_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	mailConfig := MailConfig{
		Provider:    getEnv("MAIL_PROVIDER", "log"),
		From:        getEnv("MAIL_FROM", "noreply@kbuhub.kr"),
		FromName:    getEnv("MAIL_FROM_NAME", "KBU Hub"),
		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnvInt("SMTP_PORT", 587),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    getEnv("SMTP_PASS", ""),
		BrevoAPIKey: getEnv("BREVO_API_KEY", ""),
	}

	eventsConfig := EventsConfig{
		Backend:               getEnv("EVENTS_BACKEND", "none"),
		RabbitURL:             getEnv("RABBITMQ_URL", ""),
		PubSubProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
		PubSubCredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
	}

	storageConfig := StorageConfig{
		Backend:            getEnv("STORAGE_BACKEND", "none"),
		Bucket:             getEnv("STORAGE_BUCKET", "kbuhub-attachments"),
		MinioEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:        getEnvBool("MINIO_USE_SSL", false),
		GCSProjectID:       getEnv("GCS_PROJECT_ID", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
	}

	return Config{
		Env:           getEnv("ENV", "dev"),
		ServerPort:    getEnvInt("SERVER_PORT", 8080),
		AppURL:        strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		ShellPath:     getEnv("SHELL_PATH", "web/app.html"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		EmailDomain:   getEnv("EMAIL_DOMAIN", "bible.ac.kr"),
		Database:      dbConfig,
		Mail:          mailConfig,
		Events:        eventsConfig,
		Storage:       storageConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}
