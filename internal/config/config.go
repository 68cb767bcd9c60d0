// Package config loads storefront settings from an optional YAML file, a
// .env file and the process environment, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
)

// Config is the full storefront configuration.
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Store  StoreConfig  `yaml:"store"`
	Events EventsConfig `yaml:"events"`
	Orders OrdersConfig `yaml:"orders"`
	Log    LogConfig    `yaml:"log"`
	Client ClientConfig `yaml:"client"`
	Cart   CartConfig   `yaml:"cart"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver         string        `yaml:"driver"`
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// OpTimeout bounds one attempt of one store call.
	OpTimeout     time.Duration `yaml:"op_timeout"`
	Attempts      int           `yaml:"attempts"`
	Backoff       time.Duration `yaml:"backoff"`
	MaxBackoff    time.Duration `yaml:"max_backoff"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

// EventsConfig enables order events. An empty AMQPURL disables them.
type EventsConfig struct {
	AMQPURL        string        `yaml:"amqp_url"`
	Exchange       string        `yaml:"exchange"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

type OrdersConfig struct {
	VerifyTotal bool `yaml:"verify_total"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ClientConfig is used by the CLI commands that talk to a running server.
type ClientConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

type CartConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":5000",
			BasePath:        "/api",
			CORSOrigins:     []string{"http://localhost:5173"},
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Driver:         DriverMemory,
			URI:            "mongodb://localhost:27017",
			Database:       "biryani-house",
			ConnectTimeout: 10 * time.Second,
			OpTimeout:      5 * time.Second,
			Attempts:       3,
			Backoff:        100 * time.Millisecond,
			MaxBackoff:     time.Second,
			MaxConcurrent:  50,
		},
		Events: EventsConfig{
			Exchange:       "orders_topic",
			PublishTimeout: 5 * time.Second,
		},
		Orders: OrdersConfig{VerifyTotal: true},
		Log:    LogConfig{Level: "info", Format: "json"},
		Client: ClientConfig{
			BaseURL: "http://localhost:5000/api",
			Timeout: 5 * time.Second,
			Retries: 2,
		},
		Cart: CartConfig{Dir: defaultCartDir()},
	}
}

// Load builds the configuration. path may be empty; a named file that does
// not exist is an error. A .env file in the working directory is loaded if
// present.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if port := getEnv("PORT", ""); port != "" {
		c.HTTP.Addr = ":" + port
	}
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.BasePath = getEnv("HTTP_BASE_PATH", c.HTTP.BasePath)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.HTTP.CORSOrigins = splitList(origins)
	}

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	if uri := getEnv("MONGODB_URI", ""); uri != "" {
		c.Store.URI = uri
		// Naming a database implies using it.
		if _, set := os.LookupEnv("STORE_DRIVER"); !set {
			c.Store.Driver = DriverMongo
		}
	}
	c.Store.Database = getEnv("MONGODB_DATABASE", c.Store.Database)

	c.Events.AMQPURL = getEnv("AMQP_URL", c.Events.AMQPURL)
	c.Orders.VerifyTotal = getEnvBool("ORDERS_VERIFY_TOTAL", c.Orders.VerifyTotal)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Client.BaseURL = getEnv("API_BASE_URL", c.Client.BaseURL)
	c.Cart.Dir = getEnv("CART_DIR", c.Cart.Dir)
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	var problems []string
	switch c.Store.Driver {
	case DriverMemory, DriverMongo:
	default:
		problems = append(problems, fmt.Sprintf("store.driver must be %q or %q, got %q", DriverMemory, DriverMongo, c.Store.Driver))
	}
	if c.Store.Driver == DriverMongo && (c.Store.URI == "" || c.Store.Database == "") {
		problems = append(problems, "store.uri and store.database are required for the mongo driver")
	}
	if c.Store.Attempts < 1 {
		problems = append(problems, "store.attempts must be at least 1")
	}
	if c.Store.OpTimeout <= 0 {
		problems = append(problems, "store.op_timeout must be positive")
	}
	if c.Store.MaxConcurrent < 1 {
		problems = append(problems, "store.max_concurrent must be at least 1")
	}
	if c.HTTP.BasePath != "" && !strings.HasPrefix(c.HTTP.BasePath, "/") {
		problems = append(problems, "http.base_path must start with /")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level: %v", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		problems = append(problems, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// SetupLogging configures the global logrus logger.
func SetupLogging(l LogConfig) error {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if l.Format == "text" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.WithField("key", key).Warn("Ignoring non-boolean environment value")
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultCartDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "biryani-house")
	}
	return ".biryani-house"
}
