// Пакет model — доменные типы производственного плана видео-компиляций.
// Записи приходят из REST API и не хранятся локально.
package model

import (
	"slices"
	"strings"
)

// Stage — этап съёмки компиляции.
type Stage string

const (
	StagePrep        Stage = "PREP"
	StageFilming     Stage = "FILMING"
	StageDoneFilming Stage = "DONE_FILMING"
	StageCanceled    Stage = "CANCELED"
	StageRefilm      Stage = "REFILM"
)

// Stages — допустимые этапы в порядке отображения.
var Stages = []Stage{StagePrep, StageFilming, StageDoneFilming, StageCanceled, StageRefilm}

// Status — статус монтажа.
type Status string

const (
	StatusEditing Status = "EDITING"
	StatusTesting Status = "TESTING"
	StatusReady   Status = "READY"
	StatusPosted  Status = "POSTED"
)

// Statuses — допустимые статусы в порядке отображения.
var Statuses = []Status{StatusEditing, StatusTesting, StatusReady, StatusPosted}

// Priority — приоритет компиляции.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Priorities — допустимые приоритеты в порядке отображения.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParseStage проверяет строку на принадлежность множеству этапов.
func ParseStage(s string) (Stage, bool) { return parseEnum(s, Stages) }

// ParseStatus проверяет строку на принадлежность множеству статусов.
func ParseStatus(s string) (Status, bool) { return parseEnum(s, Statuses) }

// ParsePriority проверяет строку на принадлежность множеству приоритетов.
func ParsePriority(s string) (Priority, bool) { return parseEnum(s, Priorities) }

func parseEnum[T ~string](s string, allowed []T) (T, bool) {
	v := T(strings.ToUpper(strings.TrimSpace(s)))
	if slices.Contains(allowed, v) {
		return v, true
	}
	var zero T
	return zero, false
}

// Person — режиссёр или монтажёр из справочника.
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Release — дата выхода части компиляции. Part — номер слота (1..3).
type Release struct {
	ReleaseDateTime string `json:"releaseDateTime"`
	Part            int    `json:"part"`
}

// MaxReleases — число слотов релизов в форме редактирования.
const MaxReleases = 3

// VideoRecord — запись производственного плана.
// Пустая строка в опциональном поле означает отсутствие значения.
type VideoRecord struct {
	ID              int64             `json:"id"`
	CompilationName string            `json:"compilationName"`
	FilmingStart    string            `json:"filmingStart,omitempty"`
	EditStart       string            `json:"editStart,omitempty"`
	Stage           Stage             `json:"stage,omitempty"`
	Status          Status            `json:"status,omitempty"`
	Priority        Priority          `json:"priority,omitempty"`
	ReferenceLink   string            `json:"referenceLink,omitempty"`
	Comment         string            `json:"comment,omitempty"`
	Director        *Person           `json:"director,omitempty"`
	Editor          *Person           `json:"editor,omitempty"`
	Releases        []Release         `json:"releases,omitempty"`
	Tests           []TestMeasurement `json:"tests,omitempty"`
}

// DirectorName возвращает имя режиссёра или пустую строку.
func (v *VideoRecord) DirectorName() string {
	if v.Director == nil {
		return ""
	}
	return v.Director.Name
}

// EditorName возвращает имя монтажёра или пустую строку.
func (v *VideoRecord) EditorName() string {
	if v.Editor == nil {
		return ""
	}
	return v.Editor.Name
}

// SortedReleases возвращает копию релизов, упорядоченную по номеру части.
func (v *VideoRecord) SortedReleases() []Release {
	out := slices.Clone(v.Releases)
	slices.SortStableFunc(out, func(a, b Release) int { return a.Part - b.Part })
	return out
}

// ReleaseForPart возвращает дату релиза указанной части или пустую строку.
func (v *VideoRecord) ReleaseForPart(part int) string {
	for _, r := range v.Releases {
		if r.Part == part {
			return r.ReleaseDateTime
		}
	}
	return ""
}

// PageInfo — метаданные страницы из ответа API.
type PageInfo struct {
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// VideoPage — страница записей.
type VideoPage struct {
	Content []VideoRecord `json:"content"`
	Page    PageInfo      `json:"page"`
}

// IDs возвращает идентификаторы записей страницы в порядке отображения.
func (p *VideoPage) IDs() []int64 {
	ids := make([]int64, 0, len(p.Content))
	for i := range p.Content {
		ids = append(ids, p.Content[i].ID)
	}
	return ids
}

// Find ищет запись на странице по идентификатору.
func (p *VideoPage) Find(id int64) (*VideoRecord, bool) {
	for i := range p.Content {
		if p.Content[i].ID == id {
			return &p.Content[i], true
		}
	}
	return nil, false
}

// PageRequest — параметры постраничного запроса списка.
// Sort имеет вид "field,asc" или "field,desc"; пустая строка — порядок сервера.
type PageRequest struct {
	Page int
	Size int
	Sort string
}

// SortFields — поля, по которым API допускает сортировку.
var SortFields = []string{"compilationName", "filmingStart", "editStart", "stage", "status", "priority"}

// ValidSort проверяет выражение сортировки.
func ValidSort(sort string) bool {
	if sort == "" {
		return true
	}
	field, dir, ok := strings.Cut(sort, ",")
	if !ok {
		return slices.Contains(SortFields, field)
	}
	return slices.Contains(SortFields, field) && (dir == "asc" || dir == "desc")
}

// CreateRequest — тело POST /api/videos.
// Даты и название отправляются всегда, остальные поля только при наличии значения.
type CreateRequest struct {
	CompilationName string    `json:"compilationName"`
	FilmingStart    string    `json:"filmingStart"`
	EditStart       string    `json:"editStart"`
	Stage           *Stage    `json:"stage,omitempty"`
	Status          *Status   `json:"status,omitempty"`
	Priority        *Priority `json:"priority,omitempty"`
	ReferenceLink   *string   `json:"referenceLink,omitempty"`
	Comment         *string   `json:"comment,omitempty"`
}
