package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"contact-intake-api/models"
)

// EncodeFields serialises the caller fields of a submission for a column
// store. System keys are never part of the blob.
func EncodeFields(fields map[string]any) (string, error) {
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		if models.IsSystemKey(k) {
			continue
		}
		clean[k] = v
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(data), nil
}

// DecodeFields is the inverse of EncodeFields. Numbers are kept as json.Number.
func DecodeFields(raw string) (map[string]any, error) {
	fields := map[string]any{}
	if raw == "" {
		return fields, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}

// FormatTime renders t for a text column, or nil for the zero time.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(models.TimeLayout)
}

// ParseTime reads a text column written by FormatTime.
func ParseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", raw, err)
	}
	return t, nil
}
