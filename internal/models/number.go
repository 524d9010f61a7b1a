package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Number - числовое поле телеметрии, принимающее число или строку с числом.
// Датчики шлют значения в обоих видах; значение, которое не приводится к числу,
// помечается как невалидное, но не ломает разбор всего payload.
type Number struct {
	Value   float64
	Present bool
	Valid   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	n.Present = true

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.Value = f
		n.Valid = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			n.Value = f
			n.Valid = true
		}
		return nil
	}

	// Неожиданный тип (объект, массив, bool) - поле считается невалидным
	return nil
}

func (n *Number) MarshalJSON() ([]byte, error) {
	if n == nil || !n.Present || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Float возвращает значение как *float64 или nil, если поле отсутствует/невалидно
func (n *Number) Float() *float64 {
	if n == nil || !n.Present || !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
