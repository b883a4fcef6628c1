package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Version — вариант монтажа компиляции (V1..V5).
type Version string

const (
	V1 Version = "V1"
	V2 Version = "V2"
	V3 Version = "V3"
	V4 Version = "V4"
	V5 Version = "V5"
)

// Versions — все версии в каноническом порядке.
var Versions = [...]Version{V1, V2, V3, V4, V5}

// Index возвращает позицию версии в Versions или -1.
func (v Version) Index() int {
	for i, known := range Versions {
		if known == v {
			return i
		}
	}
	return -1
}

// RetentionTime — момент ролика, в который измерено удержание.
type RetentionTime string

const (
	Retention3s  RetentionTime = "3s"
	Retention15s RetentionTime = "15s"
	Retention30s RetentionTime = "30s"
	Retention45s RetentionTime = "45s"
)

// RetentionTimes — все моменты измерения в каноническом порядке.
var RetentionTimes = [...]RetentionTime{Retention3s, Retention15s, Retention30s, Retention45s}

// Index возвращает позицию момента в RetentionTimes или -1.
func (t RetentionTime) Index() int {
	for i, known := range RetentionTimes {
		if known == t {
			return i
		}
	}
	return -1
}

// ParseRetentionTime проверяет строку на принадлежность множеству моментов.
func ParseRetentionTime(s string) (RetentionTime, bool) {
	t := RetentionTime(strings.TrimSpace(s))
	return t, t.Index() >= 0
}

// RetentionValue — значение удержания. API присылает число или строку,
// поэтому исходное представление сохраняется в Raw, а числовое — в Number.
type RetentionValue struct {
	Raw     string
	Number  float64
	Numeric bool
}

// NumericValue создаёт числовое значение удержания.
func NumericValue(f float64) RetentionValue {
	return RetentionValue{Raw: strconv.FormatFloat(f, 'f', -1, 64), Number: f, Numeric: true}
}

// ParseRetentionValue разбирает пользовательский ввод.
// Нечисловой или неконечный ввод сохраняется как есть с Numeric=false.
func ParseRetentionValue(s string) RetentionValue {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return RetentionValue{Raw: s}
	}
	return RetentionValue{Raw: s, Number: f, Numeric: true}
}

// IsZero сообщает, что значение отсутствует.
func (v RetentionValue) IsZero() bool {
	return v.Raw == "" && !v.Numeric
}

// String возвращает исходное представление значения.
func (v RetentionValue) String() string {
	if v.Numeric && v.Raw == "" {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Raw
}

// MarshalJSON отправляет числовые значения числом, прочие — строкой.
func (v RetentionValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Numeric:
		return []byte(strconv.FormatFloat(v.Number, 'f', -1, 64)), nil
	case v.Raw == "":
		return []byte("null"), nil
	default:
		return json.Marshal(v.Raw)
	}
}

// UnmarshalJSON принимает число, строку или null.
func (v *RetentionValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = RetentionValue{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ParseRetentionValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = ParseRetentionValue(n.String())
	return nil
}

// TestMeasurement — одно измерение удержания для пары (версия, момент).
type TestMeasurement struct {
	Version        Version        `json:"version"`
	RetentionTime  RetentionTime  `json:"retentionTime"`
	RetentionValue RetentionValue `json:"retentionValue"`
}
