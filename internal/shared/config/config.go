package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config — полная конфигурация трекинг-сервиса
type Config struct {
	Database DBConfig
	RabbitMQ MQConfig
	Redis    RedisConfig
	Service  ServiceConfig
	JWT      JWTConfig
	Routing  RoutingConfig
	Tracking TrackingConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type MQConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

type ServiceConfig struct {
	Port int
}

type JWTConfig struct {
	Secret        string
	ExpiryMinutes int
}

// RoutingConfig — настройки внешнего routing-провайдера (HERE)
type RoutingConfig struct {
	APIKey         string
	BaseURL        string
	GeocodeBaseURL string
	TransportMode  string
	Timeout        time.Duration
}

// TrackingConfig — тюнинг движка трекинга
type TrackingConfig struct {
	StalenessThreshold time.Duration // максимальный возраст "живой" позиции
	IdleSessionTimeout time.Duration // таймаут неактивной ws-сессии
	SessionQueueSize   int           // емкость буфера исходящих на сессию
	PickupRadiusMeters float64       // радиус для inference assigned -> en_route_pickup
	FallbackFee        float64       // фиксированный fee при нулевой конфигурации зон
	AvgCourierSpeedKmh float64       // для ETA при haversine-фоллбеке
}

// Load — загрузка из CONFIG_DIR (по умолчанию ./config) + ENV перекрывает
func Load() Config {
	configDir := getEnv("CONFIG_DIR", "./config")
	cfg := Config{}

	dbKV := parseYAMLOrNil(filepath.Join(configDir, "db.yaml"))
	cfg.Database.Host = pick("DB_HOST", dbKV, "host", "localhost")
	cfg.Database.Port = pickInt("DB_PORT", dbKV, "port", 5432)
	cfg.Database.User = pick("DB_USER", dbKV, "user", "tracking_user")
	cfg.Database.Password = pick("DB_PASSWORD", dbKV, "password", "tracking_pass")
	cfg.Database.Database = pick("DB_NAME", dbKV, "database", "tracking_db")
	cfg.Database.SSLMode = pick("DB_SSLMODE", dbKV, "sslmode", "disable")

	mqKV := parseYAMLOrNil(filepath.Join(configDir, "mq.yaml"))
	cfg.RabbitMQ.Host = pick("RABBITMQ_HOST", mqKV, "host", "localhost")
	cfg.RabbitMQ.Port = pickInt("RABBITMQ_PORT", mqKV, "port", 5672)
	cfg.RabbitMQ.User = pick("RABBITMQ_USER", mqKV, "user", "guest")
	cfg.RabbitMQ.Password = pick("RABBITMQ_PASSWORD", mqKV, "password", "guest")
	cfg.RabbitMQ.VHost = pick("RABBITMQ_VHOST", mqKV, "vhost", "/")

	redisKV := parseYAMLOrNil(filepath.Join(configDir, "redis.yaml"))
	cfg.Redis.Addr = pick("REDIS_ADDR", redisKV, "addr", "localhost:6379")
	cfg.Redis.Password = pick("REDIS_PASSWORD", redisKV, "password", "")
	cfg.Redis.DB = pickInt("REDIS_DB", redisKV, "db", 0)
	cfg.Redis.Enabled = pick("REDIS_ENABLED", redisKV, "enabled", "true") == "true"

	svcKV := parseYAMLOrNil(filepath.Join(configDir, "service.yaml"))
	cfg.Service.Port = pickInt("TRACKING_SERVICE_PORT", svcKV, "tracking_service", 3002)

	jwtKV := parseYAMLOrNil(filepath.Join(configDir, "jwt.yaml"))
	cfg.JWT.Secret = pick("JWT_SECRET", jwtKV, "secret", "dev_secret")
	cfg.JWT.ExpiryMinutes = pickInt("JWT_EXPIRY_MINUTES", jwtKV, "expiry_minutes", 60)

	routingKV := parseYAMLOrNil(filepath.Join(configDir, "routing.yaml"))
	cfg.Routing.APIKey = pick("HERE_API_KEY", routingKV, "api_key", "")
	cfg.Routing.BaseURL = pick("HERE_BASE_URL", routingKV, "base_url", "https://router.hereapi.com/v8")
	cfg.Routing.GeocodeBaseURL = pick("HERE_GEOCODE_BASE_URL", routingKV, "geocode_base_url", "https://geocode.search.hereapi.com/v1")
	cfg.Routing.TransportMode = pick("ROUTING_TRANSPORT_MODE", routingKV, "transport_mode", "bicycle")
	cfg.Routing.Timeout = time.Duration(pickInt("ROUTING_TIMEOUT_SECONDS", routingKV, "timeout_seconds", 8)) * time.Second

	trackKV := parseYAMLOrNil(filepath.Join(configDir, "tracking.yaml"))
	cfg.Tracking.StalenessThreshold = time.Duration(pickInt("STALENESS_THRESHOLD_SECONDS", trackKV, "staleness_threshold_seconds", 120)) * time.Second
	cfg.Tracking.IdleSessionTimeout = time.Duration(pickInt("IDLE_SESSION_TIMEOUT_SECONDS", trackKV, "idle_session_timeout_seconds", 300)) * time.Second
	cfg.Tracking.SessionQueueSize = pickInt("SESSION_QUEUE_SIZE", trackKV, "session_queue_size", 64)
	cfg.Tracking.PickupRadiusMeters = pickFloat("PICKUP_RADIUS_METERS", trackKV, "pickup_radius_meters", 150)
	cfg.Tracking.FallbackFee = pickFloat("FALLBACK_FEE", trackKV, "fallback_fee", 100)
	cfg.Tracking.AvgCourierSpeedKmh = pickFloat("AVG_COURIER_SPEED_KMH", trackKV, "avg_courier_speed_kmh", 25)

	return cfg
}

// parseYAMLOrNil — парсит простой плоский YAML (key: value), nil если файла нет
func parseYAMLOrNil(path string) map[string]string {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil
	}
	defer f.Close()

	result := map[string]string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		result[key] = val
	}
	return result
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// pick — ENV перекрывает YAML, YAML перекрывает дефолт
func pick(envKey string, yaml map[string]string, key, def string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	if val, ok := yaml[key]; ok && val != "" {
		return val
	}
	return def
}

func pickInt(envKey string, yaml map[string]string, key string, def int) int {
	if n, err := strconv.Atoi(pick(envKey, yaml, key, "")); err == nil {
		return n
	}
	return def
}

func pickFloat(envKey string, yaml map[string]string, key string, def float64) float64 {
	if f, err := strconv.ParseFloat(pick(envKey, yaml, key, ""), 64); err == nil {
		return f
	}
	return def
}

// DSN возвращает строку подключения к БД
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AMQPURL возвращает URL подключения к RabbitMQ
func (c MQConfig) AMQPURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}
