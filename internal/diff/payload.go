// Пакет diff — построение минимальных PATCH-тел для записей плана.
// Поле попадает в тело только если оно действительно изменилось;
// очистка передаётся отдельными флагами clearX.
package diff

import (
	"encoding/json"
	"slices"

	"github.com/bigkaa/prodplan/internal/domain/model"
)

// UpdatePayload — тело PATCH /api/videos/{id}.
// Releases и Tests — указатели на срез, чтобы пустой список сериализовался как [].
type UpdatePayload struct {
	CompilationName *string                  `json:"compilationName,omitempty"`
	FilmingStart    *string                  `json:"filmingStart,omitempty"`
	EditStart       *string                  `json:"editStart,omitempty"`
	Stage           *model.Stage             `json:"stage,omitempty"`
	Status          *model.Status            `json:"status,omitempty"`
	Priority        *model.Priority          `json:"priority,omitempty"`
	ReferenceLink   *string                  `json:"referenceLink,omitempty"`
	Comment         *string                  `json:"comment,omitempty"`
	DirectorID      *int64                   `json:"directorId,omitempty"`
	EditorID        *int64                   `json:"editorId,omitempty"`
	Releases        *[]model.Release         `json:"releases,omitempty"`
	Tests           *[]model.TestMeasurement `json:"tests,omitempty"`

	ClearCompilationName bool `json:"clearCompilationName,omitempty"`
	ClearFilmingStart    bool `json:"clearFilmingStart,omitempty"`
	ClearEditStart       bool `json:"clearEditStart,omitempty"`
	ClearStage           bool `json:"clearStage,omitempty"`
	ClearStatus          bool `json:"clearStatus,omitempty"`
	ClearPriority        bool `json:"clearPriority,omitempty"`
	ClearReferenceLink   bool `json:"clearReferenceLink,omitempty"`
	ClearComment         bool `json:"clearComment,omitempty"`
	ClearDirector        bool `json:"clearDirector,omitempty"`
	ClearEditor          bool `json:"clearEditor,omitempty"`
}

// IsEmpty сообщает, что тело не содержит изменений.
func (p UpdatePayload) IsEmpty() bool {
	return len(p.Keys()) == 0
}

// Keys возвращает отсортированные имена полей тела. Используется для логов,
// значения в лог не попадают.
func (p UpdatePayload) Keys() []string {
	data, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// TestsUpdate формирует тело замены списка измерений удержания.
func TestsUpdate(tests []model.TestMeasurement) UpdatePayload {
	rows := slices.Clone(tests)
	if rows == nil {
		rows = []model.TestMeasurement{}
	}
	return UpdatePayload{Tests: &rows}
}
