// config/config.go
package config

import (
	"bayroute/interfaces"
	"bayroute/services"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Environment string
	Port        string
	RedisURL    string

	// Firebase Config
	FirebaseCredentials string

	// Twilio Config
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	// App Settings
	LocationSampleSeconds int // cadence of the host location worker
	LocationSourceSeed    int64
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),

		// Firebase
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),

		// Twilio
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),

		// App Settings
		LocationSampleSeconds: getEnvAsInt("LOCATION_SAMPLE_SECONDS", 30),
		LocationSourceSeed:    int64(getEnvAsInt("LOCATION_SOURCE_SEED", 1)),
	}
}

func InitRedis(cfg *Config) *redis.Client {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		// Fallback to default config
		opt = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	client := redis.NewClient(opt)
	return client
}

// InitTransport builds the notification transport stack from configuration.
// Without provider credentials deliveries go to the log only.
func (c *Config) InitTransport() interfaces.NotificationTransport {
	transports := []interfaces.NotificationTransport{services.NewLogTransport()}

	if c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != "" {
		transports = append(transports, services.NewSMSTransport(
			c.TwilioAccountSID,
			c.TwilioAuthToken,
			c.TwilioPhoneNumber,
		))
	} else {
		logrus.Warn("Twilio not configured, SMS delivery disabled")
	}

	if c.FirebaseCredentials != "" {
		pushTransport, err := services.NewPushTransport(c.FirebaseCredentials)
		if err != nil {
			logrus.Warn("Firebase init failed, push delivery disabled: ", err)
		} else {
			transports = append(transports, pushTransport)
		}
	} else {
		logrus.Warn("Firebase not configured, push delivery disabled")
	}

	if len(transports) == 1 {
		return transports[0]
	}
	return services.NewMultiTransport(transports...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
