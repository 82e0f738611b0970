package models

import "strings"

// Status is the lifecycle label of a submission.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	// StatusUrgent is assigned outside this service; nothing here sets or clears it.
	StatusUrgent Status = "Urgent"
)

var (
	statusSynonyms = map[Status][]string{
		StatusPending: {
			"pending",
			"pendiente",
		},
		StatusCompleted: {
			"completed",
			"completado",
		},
		StatusUrgent: {
			"urgent",
			"urgente",
		},
	}
	statusAliasToCanonical = buildStatusAliasMap()
)

func buildStatusAliasMap() map[string]Status {
	aliasMap := make(map[string]Status)
	for canonical, synonyms := range statusSynonyms {
		aliasMap[normalizeStatus(string(canonical))] = canonical
		for _, alias := range synonyms {
			aliasMap[normalizeStatus(alias)] = canonical
		}
	}
	return aliasMap
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseStatus maps a stored label (including the Spanish labels written by
// older deployments) to its canonical Status. An empty label is Pending.
// Unknown labels are returned as-is with ok=false.
func ParseStatus(label string) (Status, bool) {
	normalized := normalizeStatus(label)
	if normalized == "" {
		return StatusPending, true
	}
	if canonical, ok := statusAliasToCanonical[normalized]; ok {
		return canonical, true
	}
	return Status(strings.TrimSpace(label)), false
}

// Canonical returns the canonical form of s, or s unchanged when unknown.
func (s Status) Canonical() Status {
	canonical, _ := ParseStatus(string(s))
	return canonical
}
