package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT" yaml:"app_port"`
	Env               string `mapstructure:"ENV" yaml:"env"`
	LogLevel          string `mapstructure:"LOG_LEVEL" yaml:"log_level"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN" yaml:"max_requests_per_min"`
	JWTSecret         string `mapstructure:"JWT_SECRET" yaml:"jwt_secret"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`

	// Storage: "mongo" keeps bookings in MongoDB and counters in Redis,
	// "sql" keeps everything in a GORM database.
	StoreBackend string `mapstructure:"STORE_BACKEND" yaml:"store_backend"`
	DatabaseURL  string `mapstructure:"DATABASE_URL" yaml:"database_url"`
	DatabaseName string `mapstructure:"DATABASE_NAME" yaml:"database_name"`
	SQLDriver    string `mapstructure:"SQL_DRIVER" yaml:"sql_driver"`
	SQLDSN       string `mapstructure:"SQL_DSN" yaml:"sql_dsn"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR" yaml:"redis_addr"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD" yaml:"redis_password"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB" yaml:"redis_cache_db"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB" yaml:"redis_session_db"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB" yaml:"redis_queue_db"`

	// Extraction.
	Extractor    string `mapstructure:"EXTRACTOR" yaml:"extractor"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY" yaml:"gemini_api_key"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL" yaml:"gemini_model"`

	// Booking rules.
	BookingSlots          string `mapstructure:"BOOKING_SLOTS" yaml:"booking_slots"`
	BookingTimezone       string `mapstructure:"BOOKING_TIMEZONE" yaml:"booking_timezone"`
	BookingMaxPerDay      int    `mapstructure:"BOOKING_MAX_PER_DAY" yaml:"booking_max_per_day"`
	BookingCollectDetails bool   `mapstructure:"BOOKING_COLLECT_DETAILS" yaml:"booking_collect_details"`
	BookingTitle          string `mapstructure:"BOOKING_TITLE" yaml:"booking_title"`
	ChatMaxRequestsPerMin int    `mapstructure:"CHAT_MAX_REQUESTS_PER_MIN" yaml:"chat_max_requests_per_min"`

	// Post-commit hooks.
	HooksMode           string `mapstructure:"HOOKS_MODE" yaml:"hooks_mode"`
	SlackWebhookURL     string `mapstructure:"SLACK_WEBHOOK_URL" yaml:"slack_webhook_url"`
	DiscordWebhookID    string `mapstructure:"DISCORD_WEBHOOK_ID" yaml:"discord_webhook_id"`
	DiscordWebhookToken string `mapstructure:"DISCORD_WEBHOOK_TOKEN" yaml:"discord_webhook_token"`
	GoogleClientID      string `mapstructure:"GOOGLE_CLIENT_ID" yaml:"google_client_id"`
	GoogleClientSecret  string `mapstructure:"GOOGLE_CLIENT_SECRET" yaml:"google_client_secret"`
	GoogleRedirectURL   string `mapstructure:"GOOGLE_REDIRECT_URL" yaml:"google_redirect_url"`

	// Telegram transport.
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN" yaml:"telegram_token"`

	// Cron schedule for pruning stale counters.
	PruneSchedule string `mapstructure:"PRUNE_SCHEDULE" yaml:"prune_schedule"`
}

var AppConfig Config

// DefaultSlots is the bookable catalog; the lunch gap is intentional.
const DefaultSlots = "09:00,10:00,11:00,13:00,14:00,15:00,16:00"

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("STORE_BACKEND", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "bookly")
	v.SetDefault("SQL_DRIVER", "sqlite")
	v.SetDefault("SQL_DSN", "bookly.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_SESSION_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)
	v.SetDefault("EXTRACTOR", "pattern")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "models/gemini-1.5-flash")
	v.SetDefault("BOOKING_SLOTS", DefaultSlots)
	v.SetDefault("BOOKING_TIMEZONE", "UTC")
	v.SetDefault("BOOKING_MAX_PER_DAY", 3)
	v.SetDefault("BOOKING_COLLECT_DETAILS", false)
	v.SetDefault("BOOKING_TITLE", "Appointment Booking")
	v.SetDefault("CHAT_MAX_REQUESTS_PER_MIN", 20)
	v.SetDefault("HOOKS_MODE", "inline")
	v.SetDefault("SLACK_WEBHOOK_URL", "")
	v.SetDefault("DISCORD_WEBHOOK_ID", "")
	v.SetDefault("DISCORD_WEBHOOK_TOKEN", "")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/calendar/callback")
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("PRUNE_SCHEDULE", "@hourly")
}

// Load reads configuration from config.yaml (current or ./config directory)
// and the environment, environment winning.
func Load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Slots splits BookingSlots into the ordered slot catalog.
func (c Config) Slots() []string {
	raw := c.BookingSlots
	if strings.TrimSpace(raw) == "" {
		raw = DefaultSlots
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Origins splits AllowedOrigins for the CORS middleware.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Masked returns a copy with secrets blanked, for printing.
func (c Config) Masked() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "****"
	}
	c.JWTSecret = mask(c.JWTSecret)
	c.RedisPassword = mask(c.RedisPassword)
	c.GeminiAPIKey = mask(c.GeminiAPIKey)
	c.GoogleClientSecret = mask(c.GoogleClientSecret)
	c.DiscordWebhookToken = mask(c.DiscordWebhookToken)
	c.SlackWebhookURL = mask(c.SlackWebhookURL)
	c.TelegramToken = mask(c.TelegramToken)
	return c
}
