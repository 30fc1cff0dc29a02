package config

import (
	"os"
	"strings"
)

type AfricaTalkingConfig struct {
	Username string
	APIKey   string
	SMSURL   string
	SenderID string
}

type EmailConfig struct {
	Provider           string // "ses" or "sendgrid"
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
	SenderName         string
	SendGridAPIKey     string
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	TimeZone string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	GroupsClaim  string
}

type StoreConfig struct {
	Port           string
	PublicBaseURL  string
	SessionSecret  string
	CallbackSecret string
	StaffGroup     string
	CurrencyID     string
}

type PaymentConfig struct {
	MercadoPagoAccessToken string
}

type EventsConfig struct {
	KafkaBrokers string
	Topic        string
}

type ImagesConfig struct {
	GCSBucket string
	BaseURL   string
}

func LoadAfricaTalkingConfig() AfricaTalkingConfig {
	return AfricaTalkingConfig{
		Username: os.Getenv("AT_USERNAME"),
		APIKey:   os.Getenv("AT_API_KEY"),
		SMSURL:   getEnvOrDefault("AT_SMS_URL", "https://api.sandbox.africastalking.com/version1/messaging"), // Sandbox URL
		SenderID: getEnvOrDefault("AT_SENDER_ID", "AFRICASTKNG"),                                             // Default sandbox sender ID
	}
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		Provider:           strings.ToLower(getEnvOrDefault("EMAIL_PROVIDER", "ses")),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
		SenderName:         getEnvOrDefault("SENDER_NAME", "Loja"),
		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
	}
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		User:     getEnvOrDefault("POSTGRES_USER", "test"),
		Password: getEnvOrDefault("POSTGRES_PASSWORD", "test"),
		Name:     getEnvOrDefault("POSTGRES_DB", "test"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		TimeZone: getEnvOrDefault("DB_TIMEZONE", "America/Sao_Paulo"),
	}
}

func LoadOIDCConfig() OIDCConfig {
	return OIDCConfig{
		Issuer:       os.Getenv("OIDC_ISSUER"),
		ClientID:     os.Getenv("OIDC_CLIENT_ID"),
		ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		GroupsClaim:  getEnvOrDefault("OIDC_GROUPS_CLAIM", "groups"),
	}
}

func LoadStoreConfig() StoreConfig {
	return StoreConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		PublicBaseURL:  strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		SessionSecret:  getEnvOrDefault("SESSION_SECRET", "change-me"),
		CallbackSecret: getEnvOrDefault("CALLBACK_SECRET", "change-me-too"),
		StaffGroup:     getEnvOrDefault("STAFF_GROUP", "equipe"),
		CurrencyID:     getEnvOrDefault("CURRENCY_ID", "BRL"),
	}
}

func LoadPaymentConfig() PaymentConfig {
	return PaymentConfig{
		MercadoPagoAccessToken: os.Getenv("MP_ACCESS_TOKEN"),
	}
}

func LoadEventsConfig() EventsConfig {
	return EventsConfig{
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		Topic:        getEnvOrDefault("KAFKA_TOPIC", "store.events"),
	}
}

func LoadImagesConfig() ImagesConfig {
	return ImagesConfig{
		GCSBucket: os.Getenv("GCS_BUCKET"),
		BaseURL:   strings.TrimRight(os.Getenv("IMAGE_BASE_URL"), "/"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
