package diff

import (
	"errors"
	"fmt"
)

// ErrResolution — имя режиссёра или монтажёра не найдено в справочнике.
var ErrResolution = errors.New("имя не найдено в справочнике")

// Поля, для которых выполняется разрешение имени в идентификатор.
const (
	FieldDirector = "director"
	FieldEditor   = "editor"
)

// ResolutionError — ошибка разрешения имени. Блокирует отправку формы.
type ResolutionError struct {
	Field string
	Name  string
}

func (e *ResolutionError) Error() string {
	switch e.Field {
	case FieldDirector:
		return fmt.Sprintf("режиссёр %q не найден в справочнике", e.Name)
	case FieldEditor:
		return fmt.Sprintf("монтажёр %q не найден в справочнике", e.Name)
	default:
		return fmt.Sprintf("%s %q не найден в справочнике", e.Field, e.Name)
	}
}

// Is позволяет сравнивать ошибку с ErrResolution через errors.Is.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}
