package config

import (
	"log"

	"github.com/spf13/viper"
)

// LoyaltyTier maps a qualifying-booking threshold to a discount fraction.
// Tier order in configuration is significant: the first tier whose
// threshold is met wins, so higher thresholds must come first.
type LoyaltyTier struct {
	Bookings int64   `mapstructure:"bookings"`
	Discount float64 `mapstructure:"discount"`
	Name     string  `mapstructure:"name"`
}

// RefundPolicy holds the cancellation refund fractions per notice band.
type RefundPolicy struct {
	Over48h  float64 `mapstructure:"over48h"`
	Over24h  float64 `mapstructure:"over24h"`
	Under24h float64 `mapstructure:"under24h"`
}

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	AdminToken  string `mapstructure:"ADMIN_TOKEN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Payment gateway.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Push notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Business policy, read-only input to the pricing engine.
	LoyaltyTiers []LoyaltyTier
	Refunds      RefundPolicy
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 3)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")
	viper.SetDefault("cancellation.refund.over48h", 0.8)
	viper.SetDefault("cancellation.refund.over24h", 0.5)
	viper.SetDefault("cancellation.refund.under24h", 0.0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := viper.UnmarshalKey("loyalty.tiers", &AppConfig.LoyaltyTiers); err != nil {
		log.Fatalf("Failed to load loyalty tiers: %v", err)
	}
	if len(AppConfig.LoyaltyTiers) == 0 {
		AppConfig.LoyaltyTiers = DefaultLoyaltyTiers()
	}
	if err := viper.UnmarshalKey("cancellation.refund", &AppConfig.Refunds); err != nil {
		log.Fatalf("Failed to load refund policy: %v", err)
	}
}

// DefaultLoyaltyTiers is the policy used when no tiers are configured.
// Highest threshold first; the zero tier catches everyone else.
func DefaultLoyaltyTiers() []LoyaltyTier {
	return []LoyaltyTier{
		{Bookings: 10, Discount: 0.15, Name: "Gold"},
		{Bookings: 5, Discount: 0.10, Name: "Silver"},
		{Bookings: 0, Discount: 0.0, Name: "New"},
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
