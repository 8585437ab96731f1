package intake

import (
	"strings"

	"github.com/hackgods/patient-intake-scheduling/internal/extract"
)

// Merge folds a fresh extraction into what is already known. A non-empty new
// value wins; an empty one never erases a known field.
func Merge(known, fresh extract.PatientInfo) extract.PatientInfo {
	return extract.PatientInfo{
		FullName:          pick(fresh.FullName, known.FullName),
		DateOfBirth:       pick(fresh.DateOfBirth, known.DateOfBirth),
		PreferredDoctor:   pick(fresh.PreferredDoctor, known.PreferredDoctor),
		PreferredLocation: pick(fresh.PreferredLocation, known.PreferredLocation),
	}
}

func pick(fresh, known string) string {
	if v := strings.TrimSpace(fresh); v != "" {
		return v
	}
	return known
}

// MissingFields lists the absent identity fields in asking order.
func MissingFields(info extract.PatientInfo) []string {
	var missing []string
	if strings.TrimSpace(info.FullName) == "" {
		missing = append(missing, "your full name")
	}
	if strings.TrimSpace(info.DateOfBirth) == "" {
		missing = append(missing, "your date of birth")
	}
	if strings.TrimSpace(info.PreferredDoctor) == "" {
		missing = append(missing, "your preferred doctor")
	}
	if strings.TrimSpace(info.PreferredLocation) == "" {
		missing = append(missing, "your preferred location")
	}
	return missing
}

func Complete(info extract.PatientInfo) bool {
	return len(MissingFields(info)) == 0
}
