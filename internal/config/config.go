// Package config loads configs/config.yml through viper, with SMARTHUB_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Notification drivers.
const (
	NotifyNone  = "none"
	NotifyMQTT  = "mqtt"
	NotifyKafka = "kafka"
)

type Config struct {
	Port     string   `mapstructure:"port"`
	LogLevel string   `mapstructure:"log_level"`
	DB       DB       `mapstructure:"db"`
	Location Location `mapstructure:"location"`
	Sunset   Sunset   `mapstructure:"sunset"`
	Decision Decision `mapstructure:"decision"`
	CORS     CORS     `mapstructure:"cors"`
	Auth     Auth     `mapstructure:"auth"`
	Notify   Notify   `mapstructure:"notify"`
	Sim      Sim      `mapstructure:"simulator"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

type Location struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Timezone  string  `mapstructure:"timezone"`
}

type Sunset struct {
	APIURL           string        `mapstructure:"api_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Retries          int           `mapstructure:"retries"`
	FallbackComputed bool          `mapstructure:"fallback_computed"`
}

type Decision struct {
	LegacyExactMatch bool `mapstructure:"legacy_exact_match"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Auth struct {
	Enabled    bool          `mapstructure:"enabled"`
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type Notify struct {
	Driver string      `mapstructure:"driver"`
	MQTT   MQTTNotify  `mapstructure:"mqtt"`
	Kafka  KafkaNotify `mapstructure:"kafka"`
}

type MQTTNotify struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
}

type KafkaNotify struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Sim struct {
	Enabled bool          `mapstructure:"enabled"`
	Tick    time.Duration `mapstructure:"tick"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.path", "smart_hub.db")
	// Kingston, Jamaica
	v.SetDefault("location.latitude", 17.97787)
	v.SetDefault("location.longitude", -76.77339)
	v.SetDefault("location.timezone", "America/Jamaica")
	v.SetDefault("sunset.api_url", "https://api.sunrisesunset.io/json")
	v.SetDefault("sunset.timeout", 5*time.Second)
	v.SetDefault("sunset.retries", 1)
	v.SetDefault("sunset.fallback_computed", false)
	v.SetDefault("decision.legacy_exact_match", false)
	v.SetDefault("cors.allowed_origins", []string{
		"http://127.0.0.1:8000",
		"https://simple-smart-hub-client.netlify.app",
	})
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("notify.driver", NotifyNone)
	v.SetDefault("notify.mqtt.topic", "smarthub/decision")
	v.SetDefault("notify.mqtt.client_id", "smart-hub")
	v.SetDefault("notify.kafka.topic", "smarthub.decision")
	v.SetDefault("simulator.enabled", false)
	v.SetDefault("simulator.tick", 30*time.Second)
}

// Load reads config.yml from dir. A missing file is not an error; defaults
// and environment variables still apply.
func Load(dir string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("SMARTHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.Notify.Driver {
	case NotifyNone, "":
	case NotifyMQTT:
		if c.Notify.MQTT.Broker == "" {
			return errors.New("notify.mqtt.broker is required for the mqtt driver")
		}
	case NotifyKafka:
		if len(c.Notify.Kafka.Brokers) == 0 {
			return errors.New("notify.kafka.brokers is required for the kafka driver")
		}
	default:
		return fmt.Errorf("unknown notify.driver %q", c.Notify.Driver)
	}
	if c.Auth.Enabled && c.Auth.SigningKey == "" {
		return errors.New("auth.signing_key is required when auth is enabled")
	}
	if _, err := time.LoadLocation(c.Location.Timezone); err != nil {
		return fmt.Errorf("location.timezone: %w", err)
	}
	return nil
}

// TZ returns the configured timezone, falling back to the host's.
func (c Config) TZ() *time.Location {
	loc, err := time.LoadLocation(c.Location.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
