package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации стенда.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Solver    SolverConfig    `yaml:"solver"`
	Render    RenderConfig    `yaml:"render"`
	Cache     CacheConfig     `yaml:"cache"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Webhooks  []WebhookConfig `yaml:"webhooks"`
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	RESTPort int    `yaml:"rest_port"`
}

type SolverConfig struct {
	URL       string `yaml:"url"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

type RenderConfig struct {
	FrameRate int `yaml:"frame_rate"`
}

// CacheConfig: backend = none | memory | redis
type CacheConfig struct {
	Backend       string `yaml:"backend"`
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	TTLSeconds    int    `yaml:"ttl_seconds"`
	MaxItems      int    `yaml:"max_items"`
}

// EventBusConfig: backend = memory | jetstream
type EventBusConfig struct {
	Backend   string `yaml:"backend"`
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

// StorageConfig: backend = memory | badger
type StorageConfig struct {
	Backend  string `yaml:"backend"`
	DataPath string `yaml:"data_path"`
	MaxRuns  int    `yaml:"max_runs"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
}

type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
	Files bool   `yaml:"files"`
}

// WebhookConfig - исходящий webhook, регистрируемый при старте
type WebhookConfig struct {
	Name   string   `yaml:"name"`
	URL    string   `yaml:"url"`
	Secret string   `yaml:"secret"`
	Events []string `yaml:"events"`
}

type DefaultsConfig struct {
	Scenario  string `yaml:"scenario"`
	Algorithm string `yaml:"algorithm"`
}

// Default возвращает конфигурацию по умолчанию: всё в памяти, без внешних сервисов
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Host: "0.0.0.0"},
		Solver:    SolverConfig{TimeoutMS: 10000},
		Render:    RenderConfig{FrameRate: 30},
		Cache:     CacheConfig{Backend: "memory", TTLSeconds: 600, MaxItems: 256},
		EventBus:  EventBusConfig{Backend: "memory", Stream: "PATHLAB", Retention: 24, Buffer: 256},
		Storage:   StorageConfig{Backend: "memory", DataPath: "data", MaxRuns: 500},
		Telemetry: TelemetryConfig{ServiceName: "voxel-pathlab"},
		Logging:   LoggingConfig{Dir: "logs", Level: "info"},
		Defaults:  DefaultsConfig{Scenario: "simple", Algorithm: "astar"},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "PATHLAB_REST_PORT", 8090)
}

// Addr возвращает адрес прослушивания REST
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.GetRESTPort())
}

// GetURL возвращает базовый URL решателя: config -> env -> default
func (s *SolverConfig) GetURL() string {
	if s.URL != "" {
		return s.URL
	}
	if env := os.Getenv("PATHLAB_SOLVER_URL"); env != "" {
		return env
	}
	return "http://localhost:8080"
}

// Timeout возвращает таймаут запроса к решателю
func (s *SolverConfig) Timeout() time.Duration {
	if s.TimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// TTL возвращает время жизни записей кеша
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RetentionDuration возвращает срок хранения событий в стриме
func (e *EventBusConfig) RetentionDuration() time.Duration {
	return time.Duration(e.Retention) * time.Hour
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", берёт путь из ENV PATHLAB_CONFIG; если и его нет, возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("PATHLAB_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения перечислений
func (c *Config) Validate() error {
	if !oneOf(c.Cache.Backend, "none", "memory", "redis") {
		return fmt.Errorf("cache.backend: неизвестное значение %q", c.Cache.Backend)
	}
	if !oneOf(c.EventBus.Backend, "memory", "jetstream") {
		return fmt.Errorf("eventbus.backend: неизвестное значение %q", c.EventBus.Backend)
	}
	if !oneOf(c.Storage.Backend, "memory", "badger") {
		return fmt.Errorf("storage.backend: неизвестное значение %q", c.Storage.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url обязателен для backend=redis")
	}
	if c.EventBus.Backend == "jetstream" && c.EventBus.URL == "" {
		return fmt.Errorf("eventbus.url обязателен для backend=jetstream")
	}
	for i, w := range c.Webhooks {
		if w.URL == "" {
			return fmt.Errorf("webhooks[%d].url обязателен", i)
		}
	}
	if c.Render.FrameRate < 0 {
		return fmt.Errorf("render.frame_rate не может быть отрицательным")
	}
	return nil
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
