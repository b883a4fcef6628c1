// directory.go — кэш справочников режиссёров и монтажёров.
// Обёртка над hashicorp/golang-lru/v2/expirable: справочники меняются редко,
// а нужны на каждой форме редактирования.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/prodplan/internal/diff"
	"github.com/bigkaa/prodplan/internal/domain/model"
)

// Prometheus-метрики кэша справочников.
var (
	directoryCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pp_directory_cache_hits_total",
		Help: "Общее количество попаданий в кэш справочников.",
	})
	directoryCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pp_directory_cache_misses_total",
		Help: "Общее количество промахов кэша справочников.",
	})
)

const (
	directorsKey = "directors"
	editorsKey   = "editors"
)

// DirectoryAPI — операции API для получения справочников.
type DirectoryAPI interface {
	ListDirectors(ctx context.Context) ([]model.Person, error)
	ListEditors(ctx context.Context) ([]model.Person, error)
}

// DirectoryCache — справочники с TTL. Справочники общие для всех
// пользователей, токен берётся из контекста текущего запроса.
type DirectoryCache struct {
	api    DirectoryAPI
	cache  *expirable.LRU[string, []model.Person]
	logger *slog.Logger
}

// NewDirectoryCache создаёт кэш справочников. ttl <= 0 отключает истечение.
func NewDirectoryCache(api DirectoryAPI, ttl time.Duration, logger *slog.Logger) *DirectoryCache {
	return &DirectoryCache{
		api:    api,
		cache:  expirable.NewLRU[string, []model.Person](2, nil, ttl),
		logger: logger.With(slog.String("component", "directory_cache")),
	}
}

// Directory возвращает оба справочника, загружая отсутствующие из API.
func (c *DirectoryCache) Directory(ctx context.Context) (diff.Directory, error) {
	directors, err := c.load(ctx, directorsKey, c.api.ListDirectors)
	if err != nil {
		return diff.Directory{}, fmt.Errorf("загрузка режиссёров: %w", err)
	}
	editors, err := c.load(ctx, editorsKey, c.api.ListEditors)
	if err != nil {
		return diff.Directory{}, fmt.Errorf("загрузка монтажёров: %w", err)
	}
	return diff.Directory{Directors: directors, Editors: editors}, nil
}

// Invalidate сбрасывает кэш.
func (c *DirectoryCache) Invalidate() {
	c.cache.Purge()
}

func (c *DirectoryCache) load(
	ctx context.Context,
	key string,
	fetch func(context.Context) ([]model.Person, error),
) ([]model.Person, error) {
	if people, ok := c.cache.Get(key); ok {
		directoryCacheHitsTotal.Inc()
		return people, nil
	}
	directoryCacheMissesTotal.Inc()

	people, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, people)
	c.logger.Debug("Справочник загружен",
		slog.String("directory", key),
		slog.Int("count", len(people)),
	)
	return people, nil
}
