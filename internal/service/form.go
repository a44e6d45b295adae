package service

import (
	"fmt"
	"sort"
	"strings"
)

// FormErrors collects validation messages per form field.
// It satisfies error so services can return it directly.
type FormErrors map[string][]string

// Add appends a message to field.
func (e FormErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Has reports whether field has at least one message.
func (e FormErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// Get returns the messages attached to field.
func (e FormErrors) Get(field string) []string {
	return e[field]
}

// Empty reports whether no field has errors.
func (e FormErrors) Empty() bool {
	for _, messages := range e {
		if len(messages) > 0 {
			return false
		}
	}
	return true
}

func (e FormErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], "; "))
	}
	return "invalid form: " + strings.Join(parts, ", ")
}

const (
	msgRequired = "Обязательное поле."
)

func maxLengthMessage(limit int) string {
	return fmt.Sprintf("Убедитесь, что это значение содержит не более %d символов.", limit)
}
