package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"dispatch-backend/internal/middleware"
)

// ListCacheService кэширует полные списки сущностей в Redis.
// Обработчики мутаций сбрасывают ключ сущности, списки перечитываются
// при следующем запросе — та же схема "изменил — перезагрузи список",
// что и на клиенте.
type ListCacheService struct {
	redisClient *redis.Client
	ttl         time.Duration
	enabled     bool
}

var listCache = &ListCacheService{}

// InitListCache включает кэширование списков поверх переданного клиента.
// При nil-клиенте кэш остается выключенным и все операции — no-op.
func InitListCache(client *redis.Client, ttlSeconds int) {
	if client == nil {
		listCache = &ListCacheService{}
		return
	}
	if ttlSeconds <= 0 {
		ttlSeconds = 60
	}
	listCache = &ListCacheService{
		redisClient: client,
		ttl:         time.Duration(ttlSeconds) * time.Second,
		enabled:     true,
	}
}

// Lists возвращает глобальный кэш списков
func Lists() *ListCacheService {
	return listCache
}

// Get читает закэшированный список сущности
func (c *ListCacheService) Get(ctx context.Context, entity string, result interface{}) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	val, err := c.redisClient.Get(ctx, listKey(entity)).Result()
	if err == redis.Nil {
		middleware.TrackCacheRequest(entity, false)
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("ошибка при получении списка из кэша: %w", err)
	}

	if err := json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("ошибка при десериализации списка из кэша: %w", err)
	}

	middleware.TrackCacheRequest(entity, true)
	return true, nil
}

// Set сохраняет список сущности в кэш
func (c *ListCacheService) Set(ctx context.Context, entity string, value interface{}) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации списка для кэша: %w", err)
	}

	if err := c.redisClient.Set(ctx, listKey(entity), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении списка в кэш: %w", err)
	}

	return nil
}

// Invalidate сбрасывает кэш списка после мутации
func (c *ListCacheService) Invalidate(ctx context.Context, entity string) error {
	if !c.enabled {
		return nil
	}
	return c.redisClient.Del(ctx, listKey(entity)).Err()
}

func listKey(entity string) string {
	return fmt.Sprintf("list:%s", entity)
}
