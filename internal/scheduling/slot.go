// Package scheduling turns a doctor availability template into bookable
// appointment slots.
package scheduling

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DisplayLimit is how many slots are shown to the patient at once.
const DisplayLimit = 5

const (
	displayDateLayout = "Monday, January 02"
	displayTimeLayout = "3:04 PM"
)

var ErrUnrecognizedSlot = errors.New("slot text does not match '<doctor> on <weekday, month day> at <h:mm AM/PM>'")

// Block is one working block from the schedule template.
type Block struct {
	DoctorID   string
	DoctorName string
	Location   string
	Start      time.Time
	End        time.Time
}

// Slot is a bookable window for a single doctor. It is carried through
// conversation state as-is and only rendered to text for display.
type Slot struct {
	DoctorID   string    `json:"doctor_id"`
	DoctorName string    `json:"doctor_name"`
	Location   string    `json:"location,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// Display renders "<Doctor> on <Weekday, Month DD> at <h:mm AM/PM>".
func (s Slot) Display() string {
	return fmt.Sprintf("%s on %s at %s",
		s.DoctorName,
		s.Start.Format(displayDateLayout),
		s.Start.Format(displayTimeLayout),
	)
}

func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Valid reports whether the slot can be booked at all.
func (s Slot) Valid() bool {
	return strings.TrimSpace(s.DoctorName) != "" && !s.Start.IsZero() && s.End.After(s.Start)
}

// Equal compares doctor and start, which together identify a booking.
func (s Slot) Equal(o Slot) bool {
	return strings.EqualFold(s.DoctorName, o.DoctorName) && s.Start.Equal(o.Start)
}

// DisplayList renders a numbered list of at most DisplayLimit slots.
func DisplayList(slots []Slot) string {
	shown := Presented(slots)
	lines := make([]string, 0, len(shown))
	for i, s := range shown {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, s.Display()))
	}
	return strings.Join(lines, "\n")
}

// Presented returns the prefix of slots that is shown to the patient.
func Presented(slots []Slot) []Slot {
	if len(slots) > DisplayLimit {
		return slots[:DisplayLimit]
	}
	return slots
}

var displayPattern = regexp.MustCompile(`(?i)^\s*(.+?)\s+on\s+(.+?)\s+at\s+(\d{1,2}:\d{2}\s*[AP]M)\s*$`)

// ParsedSlot is what can be recovered from a display string.
type ParsedSlot struct {
	DoctorName string
	Start      time.Time
}

// ParseDisplay reverses Display. The display text carries no year, so the
// caller supplies one.
func ParseDisplay(text string, year int, loc *time.Location) (ParsedSlot, error) {
	m := displayPattern.FindStringSubmatch(text)
	if m == nil {
		return ParsedSlot{}, ErrUnrecognizedSlot
	}
	if loc == nil {
		loc = time.UTC
	}

	clock := strings.ToUpper(strings.Join(strings.Fields(m[3]), ""))
	clock = strings.Replace(strings.Replace(clock, "AM", " AM", 1), "PM", " PM", 1)

	raw := fmt.Sprintf("%s, %d %s", strings.TrimSpace(m[2]), year, clock)
	for _, layout := range []string{"Monday, January 2, 2006 3:04 PM", "Monday, Jan 2, 2006 3:04 PM"} {
		start, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return ParsedSlot{DoctorName: strings.TrimSpace(m[1]), Start: start}, nil
		}
	}
	return ParsedSlot{}, fmt.Errorf("parse slot time %q: %w", raw, ErrUnrecognizedSlot)
}
