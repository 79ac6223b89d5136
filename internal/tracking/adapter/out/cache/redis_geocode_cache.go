package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/tracking/domain"
)

// cacheTTL — результаты геокодирования живут сутки
const cacheTTL = 24 * time.Hour

// cachedGeocode хранит и отрицательный результат: Found=false означает
// "провайдер адрес не нашел", повторный вызов не нужен
type cachedGeocode struct {
	Found     bool    `json:"found"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// RedisGeocodeCache — кэш геокодирования поверх Redis.
// При nil-клиенте (Redis выключен) все обращения — промахи.
type RedisGeocodeCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisGeocodeCache создает кэш; client может быть nil
func NewRedisGeocodeCache(client *redis.Client, log *logger.Logger) *RedisGeocodeCache {
	return &RedisGeocodeCache{
		client: client,
		log:    log,
	}
}

func cacheKey(address string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(address))))
	return "geocode:" + hex.EncodeToString(sum[:])
}

// Get возвращает (coord, found, ok); ok=false — промах кэша
func (c *RedisGeocodeCache) Get(ctx context.Context, address string) (*domain.Coordinate, bool, bool) {
	if c.client == nil {
		return nil, false, false
	}

	raw, err := c.client.Get(ctx, cacheKey(address)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn(logger.Entry{
				Action:  "geocode_cache_get_failed",
				Message: err.Error(),
			})
		}
		return nil, false, false
	}

	var cached cachedGeocode
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, false, false
	}

	if !cached.Found {
		return nil, false, true
	}
	return &domain.Coordinate{Latitude: cached.Latitude, Longitude: cached.Longitude}, true, true
}

// Put сохраняет результат; coord==nil означает "адрес не найден"
func (c *RedisGeocodeCache) Put(ctx context.Context, address string, coord *domain.Coordinate) {
	if c.client == nil {
		return
	}

	cached := cachedGeocode{Found: coord != nil}
	if coord != nil {
		cached.Latitude = coord.Latitude
		cached.Longitude = coord.Longitude
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, cacheKey(address), raw, cacheTTL).Err(); err != nil {
		c.log.Warn(logger.Entry{
			Action:  "geocode_cache_put_failed",
			Message: err.Error(),
		})
		// Кэш best-effort, ошибку не распространяем
	}
}
