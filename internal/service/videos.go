// videos.go — операции над записями производственного плана.
//
// VideoService строит тела запросов через пакет diff и передаёт их в API.
// Ошибки валидации и разрешения имён возвращаются до отправки запроса.
//
// Prometheus-метрики:
//   - pp_bulk_update_duration_seconds — длительность массового обновления
//   - pp_bulk_update_requests_total — результаты отдельных запросов массового обновления
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/bigkaa/prodplan/internal/apiclient"
	"github.com/bigkaa/prodplan/internal/diff"
	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/retention"
)

var (
	bulkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pp_bulk_update_duration_seconds",
		Help:    "Длительность массового обновления записей",
		Buckets: prometheus.DefBuckets,
	})

	bulkRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pp_bulk_update_requests_total",
		Help: "Количество запросов массового обновления по результату",
	}, []string{"result"}) // result: ok, error
)

// VideoAPI — операции API над записями.
type VideoAPI interface {
	ListVideos(ctx context.Context, req model.PageRequest) (*model.VideoPage, error)
	CreateVideo(ctx context.Context, req model.CreateRequest) (*model.VideoRecord, error)
	UpdateVideo(ctx context.Context, id int64, payload diff.UpdatePayload) (*model.VideoRecord, error)
	DeleteVideo(ctx context.Context, id int64) error
}

// VideoService — бизнес-логика списка, создания и редактирования записей.
type VideoService struct {
	api    VideoAPI
	dirs   *DirectoryCache
	logger *slog.Logger
}

// NewVideoService создаёт сервис записей.
func NewVideoService(api VideoAPI, dirs *DirectoryCache, logger *slog.Logger) *VideoService {
	return &VideoService{
		api:    api,
		dirs:   dirs,
		logger: logger.With(slog.String("component", "video_service")),
	}
}

// Directory возвращает справочники режиссёров и монтажёров.
func (s *VideoService) Directory(ctx context.Context) (diff.Directory, error) {
	return s.dirs.Directory(ctx)
}

// List возвращает страницу записей.
func (s *VideoService) List(ctx context.Context, req model.PageRequest) (*model.VideoPage, error) {
	if req.Page < 0 {
		return nil, fmt.Errorf("%w: номер страницы не может быть отрицательным", ErrValidation)
	}
	if req.Size < 1 {
		return nil, fmt.Errorf("%w: размер страницы должен быть положительным", ErrValidation)
	}
	if !model.ValidSort(req.Sort) {
		return nil, fmt.Errorf("%w: недопустимая сортировка %q", ErrValidation, req.Sort)
	}
	return s.api.ListVideos(ctx, req)
}

// Find ищет запись по id, просматривая страницы списка.
// В API нет получения записи по id.
func (s *VideoService) Find(ctx context.Context, id int64, pageSize int) (*model.VideoRecord, error) {
	if pageSize < 1 {
		pageSize = 100
	}
	for page := 0; ; page++ {
		p, err := s.api.ListVideos(ctx, model.PageRequest{Page: page, Size: pageSize})
		if err != nil {
			return nil, err
		}
		if record, ok := p.Find(id); ok {
			return record, nil
		}
		if len(p.Content) == 0 || page+1 >= p.Page.TotalPages {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
	}
}

// Create создаёт запись.
func (s *VideoService) Create(ctx context.Context, values diff.CreateValues) (*model.VideoRecord, error) {
	req := diff.BuildCreate(values)
	if req.CompilationName == "" {
		return nil, fmt.Errorf("%w: название компиляции обязательно", ErrValidation)
	}

	record, err := s.api.CreateVideo(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("создание записи: %w", err)
	}
	s.logger.Info("Запись создана", slog.Int64("id", record.ID))
	return record, nil
}

// Update сравнивает форму с исходной записью и отправляет только изменения.
// Если изменений нет, запрос не отправляется и возвращается исходная запись.
func (s *VideoService) Update(ctx context.Context, original *model.VideoRecord, values diff.EditValues) (*model.VideoRecord, error) {
	dir, err := s.dirs.Directory(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := diff.ComputeUpdate(original, values, dir)
	if err != nil {
		s.dropStaleDirectory(err)
		return nil, err
	}
	if payload.IsEmpty() {
		s.logger.Debug("Изменений нет, запрос не отправлен", slog.Int64("id", original.ID))
		return original, nil
	}

	record, err := s.api.UpdateVideo(ctx, original.ID, payload)
	if err != nil {
		return nil, fmt.Errorf("обновление записи %d: %w", original.ID, err)
	}
	return record, nil
}

// BulkUpdate применяет одно тело PATCH ко всем ids параллельно.
// Порядок запросов не определён; при частичном отказе возвращается *BatchError.
func (s *VideoService) BulkUpdate(ctx context.Context, ids []int64, values diff.BulkValues) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: не выбрано ни одной записи", ErrValidation)
	}
	dir, err := s.dirs.Directory(ctx)
	if err != nil {
		return err
	}
	payload, err := diff.ComputeBulkUpdate(values, dir)
	if err != nil {
		s.dropStaleDirectory(err)
		return err
	}
	if payload.IsEmpty() {
		return fmt.Errorf("%w: %w", ErrValidation, ErrNoChanges)
	}
	return s.fanOut(ctx, ids, payload)
}

// dropStaleDirectory сбрасывает кэш справочников, если имя не разрешилось:
// справочник мог измениться после загрузки формы.
func (s *VideoService) dropStaleDirectory(err error) {
	if errors.Is(err, diff.ErrResolution) {
		s.dirs.Invalidate()
	}
}

func (s *VideoService) fanOut(ctx context.Context, ids []int64, payload diff.UpdatePayload) error {
	start := time.Now()
	defer func() { bulkDuration.Observe(time.Since(start).Seconds()) }()

	var (
		mu     sync.Mutex
		failed = make(map[int64]error)
		g      errgroup.Group
	)
	for _, id := range ids {
		g.Go(func() error {
			_, err := s.api.UpdateVideo(ctx, id, payload)
			if err != nil {
				bulkRequestsTotal.WithLabelValues("error").Inc()
				mu.Lock()
				failed[id] = err
				mu.Unlock()
				return nil
			}
			bulkRequestsTotal.WithLabelValues("ok").Inc()
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Массовое обновление завершено",
		slog.Int("total", len(ids)),
		slog.Int("failed", len(failed)),
		slog.Any("fields", payload.Keys()),
	)
	if len(failed) > 0 {
		return &BatchError{Total: len(ids), Failed: failed}
	}
	return nil
}

// Delete удаляет запись.
func (s *VideoService) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteVideo(ctx, id); err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return fmt.Errorf("удаление записи %d: %w", id, err)
	}
	s.logger.Info("Запись удалена", slog.Int64("id", id))
	return nil
}

// SaveTests проверяет строки измерений и заменяет ими список tests записи.
func (s *VideoService) SaveTests(ctx context.Context, id int64, rows []retention.Row) (*model.VideoRecord, error) {
	tests, err := retention.ValidateRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	record, err := s.api.UpdateVideo(ctx, id, diff.TestsUpdate(tests))
	if err != nil {
		return nil, fmt.Errorf("сохранение измерений записи %d: %w", id, err)
	}
	return record, nil
}
