package extract

import (
	"math"
	"strconv"
	"strings"
)

// Canonical field names. The model is asked for camelCase keys but answers
// with whatever casing it likes, so every field accepts a set of aliases.
const (
	FieldFullName          = "full_name"
	FieldDateOfBirth       = "date_of_birth"
	FieldPreferredDoctor   = "preferred_doctor"
	FieldPreferredLocation = "preferred_location"
	FieldSlotNumber        = "slot_number"
	FieldSelectedSlot      = "selected_slot"
	FieldPatientEmail      = "patient_email"
)

var fieldAliases = map[string][]string{
	FieldFullName:          {"fullName", "full_name", "name"},
	FieldDateOfBirth:       {"dateOfBirth", "date_of_birth", "dob"},
	FieldPreferredDoctor:   {"preferredDoctor", "preferred_doctor", "doctor"},
	FieldPreferredLocation: {"preferredLocation", "preferred_location", "location"},
	FieldSlotNumber:        {"slotNumber", "slot_number", "number"},
	FieldSelectedSlot:      {"selectedSlot", "selected_slot", "slot"},
	FieldPatientEmail:      {"patientEmail", "patient_email", "email"},
}

// Record is a model response keyed by canonical field name.
type Record map[string]any

// Normalize maps raw keys to canonical names. Aliases are tried in declared
// order and the first non-empty value wins; unknown keys are dropped.
func Normalize(raw map[string]any) Record {
	out := make(Record, len(fieldAliases))
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			v, ok := raw[alias]
			if !ok || isEmpty(v) {
				continue
			}
			out[field] = v
			break
		}
	}
	return out
}

// String returns the field as trimmed text, or "" when absent.
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case string:
		s := strings.TrimSpace(v)
		if strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
			return ""
		}
		return s
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Int returns the field as a whole number. JSON numbers and numeric strings
// are both accepted.
func (r Record) Int(field string) (int, bool) {
	switch v := r[field].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}
