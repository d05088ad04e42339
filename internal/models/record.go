package models

import (
	"strconv"
	"strings"
)

// Record is one entity row as returned by the upstream backend. The
// backend's field sets vary per entity and individual fields may be
// absent, so rows are kept as loose maps and read defensively.
type Record map[string]any

// idAliases lists the identifier spellings used by different upstream
// entities. Normalization collapses them all to "id" so nothing past the
// client boundary needs entity-specific id logic.
var idAliases = []string{"id", "admin_id", "student_id", "company_id", "mentor_id", "program_id", "application_id"}

// NormalizeID copies the first identifier alias found into the canonical
// "id" key. Records without any identifier are left untouched.
func (r Record) NormalizeID() {
	for _, alias := range idAliases {
		if v, ok := r[alias]; ok {
			if s := stringify(v); s != "" {
				r["id"] = s
				return
			}
		}
	}
}

// ID returns the normalized identifier, or "" when absent.
func (r Record) ID() string {
	if v, ok := r["id"]; ok {
		return stringify(v)
	}
	return ""
}

// StringField returns the named field as a string. Non-string and absent
// values report ok=false; numbers are not coerced here because search and
// display both operate on backend-supplied strings.
func (r Record) StringField(name string) (string, bool) {
	v, ok := r[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Display returns the named field rendered for the UI, falling back to
// "-" for absent, null or non-string values so a partial backend row
// never renders as "undefined".
func (r Record) Display(name string) string {
	if s, ok := r.StringField(name); ok && s != "" {
		return s
	}
	if v, ok := r[name]; ok && v != nil {
		if s := stringify(v); s != "" {
			return s
		}
	}
	return "-"
}

// Matches reports whether any of the given fields contains query as a
// case-insensitive substring. Absent and non-string fields never match.
func (r Record) Matches(query string, fields []string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range fields {
		s, ok := r.StringField(field)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(s), query) {
			return true
		}
	}
	return false
}

// stringify renders identifier-ish scalar values. JSON numbers arrive as
// float64; integral values are rendered without a decimal point.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
