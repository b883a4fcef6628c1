package retention

import (
	"errors"
	"fmt"

	"github.com/bigkaa/prodplan/internal/domain/model"
)

const (
	// MaxCombinations — число различных пар (версия, момент).
	MaxCombinations = len(model.Versions) * len(model.RetentionTimes)
	// MaxRows — предел числа строк редактора.
	MaxRows = 24
)

// ErrInvalidRows — строки измерений не прошли проверку.
var ErrInvalidRows = errors.New("некорректные строки измерений")

// RowError — ошибка в конкретной строке редактора (Index с нуля).
type RowError struct {
	Index  int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("строка %d: %s", e.Index+1, e.Reason)
}

// Is позволяет сравнивать ошибку с ErrInvalidRows через errors.Is.
func (e *RowError) Is(target error) bool {
	return target == ErrInvalidRows
}

// Row — строка редактора измерений. Value хранит ввод пользователя как есть.
type Row struct {
	Version       model.Version
	RetentionTime model.RetentionTime
	Value         string
}

// DefaultRows возвращает начальный набор строк редактора.
func DefaultRows() []Row {
	return []Row{{Version: model.V1, RetentionTime: DefaultKey}}
}

// RowsFromTests строит строки редактора из измерений записи.
func RowsFromTests(tests []model.TestMeasurement) []Row {
	if len(tests) == 0 {
		return DefaultRows()
	}
	rows := make([]Row, 0, len(tests))
	for _, m := range tests {
		rows = append(rows, Row{Version: m.Version, RetentionTime: m.RetentionTime, Value: m.RetentionValue.String()})
	}
	return rows
}

// NextCombination возвращает первую незанятую пару в порядке
// «версия, затем момент». ok=false, если заняты все пары.
func NextCombination(rows []Row) (Row, bool) {
	for _, v := range model.Versions {
		for _, t := range model.RetentionTimes {
			if !taken(rows, v, t) {
				return Row{Version: v, RetentionTime: t}, true
			}
		}
	}
	return Row{}, false
}

func taken(rows []Row, v model.Version, t model.RetentionTime) bool {
	for _, r := range rows {
		if r.Version == v && r.RetentionTime == t {
			return true
		}
	}
	return false
}

// CanAdd сообщает, доступно ли добавление строки.
func CanAdd(rows []Row) bool {
	if len(rows) >= MaxRows {
		return false
	}
	_, ok := NextCombination(rows)
	return ok
}

// AddRow добавляет строку со следующей свободной парой.
// Если добавлять нечего, возвращает исходные строки и false.
func AddRow(rows []Row) ([]Row, bool) {
	if len(rows) >= MaxRows {
		return rows, false
	}
	next, ok := NextCombination(rows)
	if !ok {
		return rows, false
	}
	return append(rows, next), true
}

// DeleteRow удаляет строку по индексу. Удаление последней строки
// возвращает редактор к начальному набору.
func DeleteRow(rows []Row, index int) []Row {
	if index < 0 || index >= len(rows) {
		return rows
	}
	out := make([]Row, 0, len(rows)-1)
	out = append(out, rows[:index]...)
	out = append(out, rows[index+1:]...)
	if len(out) == 0 {
		return DefaultRows()
	}
	return out
}

// ValidateRows проверяет строки и переводит их в измерения для отправки.
// У каждой строки должны быть версия, момент и числовое значение,
// пары (версия, момент) не должны повторяться.
func ValidateRows(rows []Row) ([]model.TestMeasurement, error) {
	out := make([]model.TestMeasurement, 0, len(rows))
	seen := make(map[[2]int]int, len(rows))
	for i, r := range rows {
		vi, ti := r.Version.Index(), r.RetentionTime.Index()
		if vi < 0 {
			return nil, &RowError{Index: i, Reason: "не выбрана версия"}
		}
		if ti < 0 {
			return nil, &RowError{Index: i, Reason: "не выбран момент удержания"}
		}
		value := model.ParseRetentionValue(r.Value)
		if !value.Numeric {
			return nil, &RowError{Index: i, Reason: "значение удержания должно быть числом"}
		}
		key := [2]int{vi, ti}
		if prev, dup := seen[key]; dup {
			return nil, &RowError{Index: i, Reason: fmt.Sprintf("пара %s/%s уже задана в строке %d", r.Version, r.RetentionTime, prev+1)}
		}
		seen[key] = i
		out = append(out, model.TestMeasurement{Version: r.Version, RetentionTime: r.RetentionTime, RetentionValue: value})
	}
	return out, nil
}
