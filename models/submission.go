package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout matches the millisecond ISO-8601 form browsers produce with
// Date.toISOString, which is what older records were written with.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Keys owned by the service. Caller-supplied values under these keys are dropped.
const (
	KeyID             = "id"
	KeySubmissionDate = "submissionDate"
	KeyStatus         = "status"
	KeyUpdatedAt      = "updatedAt"

	// KeyLegacyDate is the date field some older front ends sent themselves.
	KeyLegacyDate = "fechaSolicitud"
)

// Form fields every submission must carry.
const (
	FieldName  = "nombre"
	FieldPhone = "telefono"
)

// Submission is one contact-form entry. On disk and on the wire it is a flat
// JSON object: the caller's fields side by side with the system keys.
type Submission struct {
	ID             string
	SubmissionDate time.Time
	Status         Status
	UpdatedAt      *time.Time
	Fields         map[string]any
}

// IsSystemKey reports whether key is reserved for service metadata.
func IsSystemKey(key string) bool {
	switch key {
	case KeyID, KeySubmissionDate, KeyStatus, KeyUpdatedAt:
		return true
	}
	return false
}

// FieldString returns the named caller field as trimmed text. Numbers are
// rendered in their JSON form; anything else yields "".
func (s Submission) FieldString(key string) string {
	switch v := s.Fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// SortDate is the instant used to order submissions: SubmissionDate when
// set, otherwise the legacy date field, otherwise the zero time.
func (s Submission) SortDate() time.Time {
	if !s.SubmissionDate.IsZero() {
		return s.SubmissionDate
	}
	if t, ok := parseTime(s.Fields[KeyLegacyDate]); ok {
		return t
	}
	return time.Time{}
}

// MarshalJSON flattens Fields and the system keys into one object.
func (s Submission) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(s.Fields)+4)
	for k, v := range s.Fields {
		doc[k] = v
	}
	doc[KeyID] = s.ID
	if s.Status != "" {
		doc[KeyStatus] = string(s.Status)
	}
	if !s.SubmissionDate.IsZero() {
		doc[KeySubmissionDate] = s.SubmissionDate.UTC().Format(TimeLayout)
	}
	if s.UpdatedAt != nil {
		doc[KeyUpdatedAt] = s.UpdatedAt.UTC().Format(TimeLayout)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON splits a flat object into system keys and caller fields.
// Dates that do not parse are kept verbatim in Fields so a rewrite keeps them.
func (s *Submission) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("submission: expected a JSON object")
	}

	*s = Submission{Fields: make(map[string]any, len(doc))}
	for k, v := range doc {
		switch k {
		case KeyID:
			s.ID, _ = v.(string)
		case KeyStatus:
			label, _ := v.(string)
			s.Status = Status(label)
		case KeySubmissionDate:
			if t, ok := parseTime(v); ok {
				s.SubmissionDate = t
			} else if v != nil {
				s.Fields[k] = v
			}
		case KeyUpdatedAt:
			if t, ok := parseTime(v); ok {
				s.UpdatedAt = &t
			} else if v != nil {
				s.Fields[k] = v
			}
		default:
			s.Fields[k] = v
		}
	}
	return nil
}

func parseTime(v any) (time.Time, bool) {
	raw, ok := v.(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
