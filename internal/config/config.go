package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the triage service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Safety  SafetyConfig  `yaml:"safety"`
	Store   StoreConfig   `yaml:"store"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Ingest  IngestConfig  `yaml:"ingest"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging. File enables rotating file
// output alongside stdout.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	File  string `yaml:"file"`
}

// SafetyConfig points at the forbidden-phrase pack for the output safety
// gate. The built-in list applies when the path is empty or missing.
type SafetyConfig struct {
	PhrasesPath string `yaml:"phrasesPath"`
}

// StoreConfig controls the SQLite decision audit log. An empty path
// disables persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// AlertsConfig groups the emergency alert sinks.
type AlertsConfig struct {
	Twilio TwilioConfig `yaml:"twilio"`
	Kafka  KafkaConfig  `yaml:"kafka"`
}

// TwilioConfig configures SMS/voice escalation. The sink stays inactive
// until credentials and a sender are present.
type TwilioConfig struct {
	AccountSID          string        `yaml:"accountSID"`
	AuthToken           string        `yaml:"authToken"`
	FromPhone           string        `yaml:"fromPhone"`
	MessagingServiceSID string        `yaml:"messagingServiceSID"`
	EmergencyContact    string        `yaml:"emergencyContact"`
	ContactName         string        `yaml:"contactName"`
	VoiceFallback       bool          `yaml:"voiceFallback"`
	Timeout             time.Duration `yaml:"timeout"`
}

// KafkaConfig configures the critical-alert fan-out topic.
type KafkaConfig struct {
	Enabled bool   `yaml:"enabled"`
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
}

// IngestConfig configures the optional MQTT vitals subscription.
type IngestConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"clientID"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
}

// Load initialises Config from an optional .env file, a YAML file, and
// environment overrides, in that order.
func Load(path string) (*Config, error) {
	// Twilio credentials in particular commonly arrive via .env in local
	// deployments; a missing file is not an error.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("TRIAGE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Safety:  SafetyConfig{PhrasesPath: "configs/safety/forbidden.yaml"},
		Store:   StoreConfig{Path: "triage.db"},
		Alerts: AlertsConfig{
			Twilio: TwilioConfig{
				ContactName:   "Emergency Authority",
				VoiceFallback: true,
				Timeout:       15 * time.Second,
			},
			Kafka: KafkaConfig{
				Brokers: "localhost:9092",
				Topic:   "triage-critical-alerts",
			},
		},
		Ingest: IngestConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "triage-engine",
			Topic:    "patient-vitals",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRIAGE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("TRIAGE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("TRIAGE_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("TRIAGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRIAGE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("TRIAGE_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("TRIAGE_SAFETY_PHRASES_PATH"); v != "" {
		cfg.Safety.PhrasesPath = v
	}
	if v := os.Getenv("TRIAGE_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Alerts.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.Alerts.Twilio.AuthToken = v
	}
	if v := os.Getenv("TWILIO_FROM_PHONE"); v != "" {
		cfg.Alerts.Twilio.FromPhone = v
	}
	if v := os.Getenv("TWILIO_MESSAGING_SERVICE_SID"); v != "" {
		cfg.Alerts.Twilio.MessagingServiceSID = v
	}
	if v := os.Getenv("EMERGENCY_CONTACT_PHONE"); v != "" {
		cfg.Alerts.Twilio.EmergencyContact = v
	}
	if v := os.Getenv("EMERGENCY_CONTACT_NAME"); v != "" {
		cfg.Alerts.Twilio.ContactName = v
	}
	if v := os.Getenv("TRIAGE_ALERT_VOICE_FALLBACK"); v != "" {
		cfg.Alerts.Twilio.VoiceFallback = isTrue(v)
	}
	if v := os.Getenv("TRIAGE_ALERT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Alerts.Twilio.Timeout = d
		}
	}
	if v := os.Getenv("TRIAGE_KAFKA_ENABLED"); v != "" {
		cfg.Alerts.Kafka.Enabled = isTrue(v)
	}
	if v := os.Getenv("TRIAGE_KAFKA_BROKERS"); v != "" {
		cfg.Alerts.Kafka.Brokers = v
	}
	if v := os.Getenv("TRIAGE_KAFKA_TOPIC"); v != "" {
		cfg.Alerts.Kafka.Topic = v
	}
	if v := os.Getenv("TRIAGE_MQTT_ENABLED"); v != "" {
		cfg.Ingest.Enabled = isTrue(v)
	}
	if v := os.Getenv("TRIAGE_MQTT_BROKER"); v != "" {
		cfg.Ingest.Broker = v
	}
	if v := os.Getenv("TRIAGE_MQTT_CLIENT_ID"); v != "" {
		cfg.Ingest.ClientID = v
	}
	if v := os.Getenv("TRIAGE_MQTT_USERNAME"); v != "" {
		cfg.Ingest.Username = v
	}
	if v := os.Getenv("TRIAGE_MQTT_PASSWORD"); v != "" {
		cfg.Ingest.Password = v
	}
	if v := os.Getenv("TRIAGE_MQTT_TOPIC"); v != "" {
		cfg.Ingest.Topic = v
	}
}

func isTrue(v string) bool {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return strings.EqualFold(v, "yes")
}
