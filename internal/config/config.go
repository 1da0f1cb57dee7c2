// Package config loads server configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "8s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// GeocodeConfig configures the geocoding providers.
type GeocodeConfig struct {
	NominatimURL string   `yaml:"nominatim_url"`
	PhotonURL    string   `yaml:"photon_url"`
	UserAgent    string   `yaml:"user_agent"`
	ContactEmail string   `yaml:"contact_email"`
	Timeout      Duration `yaml:"timeout"`
}

// OrdersConfig configures order pricing.
type OrdersConfig struct {
	TaxRateBasisPoints int64 `yaml:"tax_rate_basis_points"`
	DeliveryFeeCents   int64 `yaml:"delivery_fee_cents"`
}

// Config is the server configuration.
type Config struct {
	ListenAddr     string        `yaml:"listen_addr"`
	DatabaseDSN    string        `yaml:"database_dsn"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	Geocode        GeocodeConfig `yaml:"geocode"`
	Orders         OrdersConfig  `yaml:"orders"`
}

// Default returns the configuration used when no file or overrides are
// present.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		RateLimitRPS:   20,
		RateLimitBurst: 40,
		Geocode: GeocodeConfig{
			NominatimURL: "https://nominatim.openstreetmap.org",
			PhotonURL:    "https://photon.komoot.io",
			UserAgent:    "brickoven-pos/1.0",
			Timeout:      Duration(8 * time.Second),
		},
		Orders: OrdersConfig{
			TaxRateBasisPoints: 800,
			DeliveryFeeCents:   300,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or missing)
// and applies environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.Geocode.Timeout <= 0 {
		cfg.Geocode.Timeout = Duration(8 * time.Second)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = parsed
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = parsed
		}
	}
	if v := os.Getenv("NOMINATIM_URL"); v != "" {
		cfg.Geocode.NominatimURL = v
	}
	if v := os.Getenv("PHOTON_URL"); v != "" {
		cfg.Geocode.PhotonURL = v
	}
	if v := os.Getenv("GEOCODE_USER_AGENT"); v != "" {
		cfg.Geocode.UserAgent = v
	}
	if v := os.Getenv("GEOCODE_CONTACT_EMAIL"); v != "" {
		cfg.Geocode.ContactEmail = v
	}
	if v := os.Getenv("GEOCODE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Geocode.Timeout = Duration(parsed)
		}
	}
	if v := os.Getenv("TAX_RATE_BASIS_POINTS"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Orders.TaxRateBasisPoints = parsed
		}
	}
	if v := os.Getenv("DELIVERY_FEE_CENTS"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Orders.DeliveryFeeCents = parsed
		}
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
