// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrNoChanges — массовая форма не задаёт ни одного изменения.
	ErrNoChanges = errors.New("не задано ни одного изменения")
	// ErrPartialBatch — часть запросов массовой операции завершилась ошибкой.
	ErrPartialBatch = errors.New("массовая операция выполнена частично")
)

// BatchError — ошибки отдельных записей массовой операции.
// errors.Is проходит как к ErrPartialBatch, так и к ошибкам отдельных записей.
type BatchError struct {
	Total  int
	Failed map[int64]error
}

func (e *BatchError) Error() string {
	ids := e.FailedIDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d: %v", id, e.Failed[id]))
	}
	return fmt.Sprintf("%v: %d из %d (%s)", ErrPartialBatch, len(ids), e.Total, strings.Join(parts, "; "))
}

// FailedIDs возвращает отсортированные id записей с ошибкой.
func (e *BatchError) FailedIDs() []int64 {
	ids := make([]int64, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (e *BatchError) Unwrap() []error {
	errs := []error{ErrPartialBatch}
	for _, id := range e.FailedIDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}
