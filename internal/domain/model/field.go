package model

import "strings"

// FieldState — состояние опционального поля формы.
type FieldState uint8

const (
	// FieldAbsent — поле не участвовало в редактировании.
	FieldAbsent FieldState = iota
	// FieldPresent — поле содержит значение.
	FieldPresent
	// FieldClear — пользователь явно очистил поле.
	FieldClear
)

// Field — опциональное поле с тремя состояниями: значение, отсутствие, очистка.
// Нулевое значение Field — FieldAbsent.
type Field[T any] struct {
	state FieldState
	value T
}

// Present создаёт поле со значением.
func Present[T any](v T) Field[T] {
	return Field[T]{state: FieldPresent, value: v}
}

// Absent создаёт неучаствующее поле.
func Absent[T any]() Field[T] {
	return Field[T]{}
}

// Cleared создаёт поле с запросом на очистку.
func Cleared[T any]() Field[T] {
	return Field[T]{state: FieldClear}
}

// State возвращает состояние поля.
func (f Field[T]) State() FieldState { return f.state }

// IsPresent сообщает, что поле содержит значение.
func (f Field[T]) IsPresent() bool { return f.state == FieldPresent }

// IsAbsent сообщает, что поле не участвовало в редактировании.
func (f Field[T]) IsAbsent() bool { return f.state == FieldAbsent }

// IsClear сообщает о запросе на очистку.
func (f Field[T]) IsClear() bool { return f.state == FieldClear }

// Value возвращает значение и признак его наличия.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == FieldPresent
}

// TextInput переводит значение текстового поля формы в Field.
// Непереданное поле — Absent, пустое (после trim) — Cleared.
func TextInput(raw string, submitted bool) Field[string] {
	if !submitted {
		return Absent[string]()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cleared[string]()
	}
	return Present(raw)
}

// EnumInput переводит значение select-поля в Field с проверкой допустимости.
// Недопустимое значение возвращает ok=false.
func EnumInput[T ~string](raw string, submitted bool, parse func(string) (T, bool)) (Field[T], bool) {
	text := TextInput(raw, submitted)
	v, present := text.Value()
	if !present {
		return Field[T]{state: text.state}, true
	}
	parsed, ok := parse(v)
	if !ok {
		return Absent[T](), false
	}
	return Present(parsed), true
}
