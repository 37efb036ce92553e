package config

import (
	"errors"
	"fmt"
	"os"

	"slotbot/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	History    HistoryConfig    `yaml:"history"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
	Booking    BookingConfig    `yaml:"booking"`
	Info       InfoConfig       `yaml:"info"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type StorageConfig struct {
	// Path to the JSON calendar document.
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	CredentialsFile       string `yaml:"credentials_file"`
	BookingsSpreadsheetID string `yaml:"bookings_spreadsheet_id"`
}

type BookingConfig struct {
	// AdminID is the single administrator's Telegram ID; it gates slot
	// management and receives notifications.
	AdminID           int64 `yaml:"admin_id"`
	HorizonDays       int   `yaml:"horizon_days"`
	PendingTTLSeconds int   `yaml:"pending_ttl_seconds"`
	RateLimitPerSec   int   `yaml:"rate_limit_per_sec"`
	RateLimitBurst    int   `yaml:"rate_limit_burst"`
}

// InfoConfig holds the static info screens the bot serves (prices,
// address, contact), kept out of code so the owner can edit them.
type InfoConfig struct {
	Greeting   string `yaml:"greeting"`
	PricesText string `yaml:"prices_text"`
	Address    string `yaml:"address"`
	MapURL     string `yaml:"map_url"`
	Phone      string `yaml:"phone"`
	Contact    string `yaml:"contact"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment variables may come from elsewhere.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before decoding.
	expanded := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expanded, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}
	if c.Storage.Path == "" {
		return errors.New("storage path is required")
	}
	if c.Booking.AdminID == 0 {
		return errors.New("booking admin_id is required")
	}
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path is required when history is enabled")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Booking.HorizonDays == 0 {
		c.Booking.HorizonDays = models.DefaultBookingHorizonDays
	}
	if c.Booking.PendingTTLSeconds == 0 {
		c.Booking.PendingTTLSeconds = models.DefaultPendingTTL
	}
	if c.Booking.RateLimitPerSec == 0 {
		c.Booking.RateLimitPerSec = models.RateLimitMessages
	}
	if c.Booking.RateLimitBurst == 0 {
		c.Booking.RateLimitBurst = models.RateLimitBurst
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
