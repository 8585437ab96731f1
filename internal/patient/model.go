package patient

import "strings"

type Patient struct {
	ID           string
	FirstName    string
	LastName     string
	DateOfBirth  string // YYYY-MM-DD
	VisitHistory int
	Phone        *string
	Email        *string
}

func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Returning reports whether the patient has been seen before.
func (p Patient) Returning() bool {
	return p.VisitHistory > 0
}
