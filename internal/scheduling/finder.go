package scheduling

import (
	"strings"
	"time"
)

// BookedSet holds already-booked start times. Matching is exact: a booking at
// 10:00 hides a 10:00 slot but not one at 10:30.
type BookedSet map[int64]struct{}

func NewBookedSet(starts ...time.Time) BookedSet {
	set := make(BookedSet, len(starts))
	for _, s := range starts {
		set.Add(s)
	}
	return set
}

func (b BookedSet) Add(start time.Time) {
	b[start.Unix()] = struct{}{}
}

func (b BookedSet) Has(start time.Time) bool {
	_, ok := b[start.Unix()]
	return ok
}

// FindSlots walks every block whose start falls in [from, to) and emits a
// slot at each duration-aligned offset that fits before the block ends and is
// not already booked. Output follows block order, then offset order.
func FindSlots(blocks []Block, duration time.Duration, booked BookedSet, from, to time.Time) []Slot {
	if duration <= 0 {
		return nil
	}

	var slots []Slot
	for _, b := range blocks {
		if b.Start.Before(from) || !b.Start.Before(to) {
			continue
		}
		for start := b.Start; !start.Add(duration).After(b.End); start = start.Add(duration) {
			if booked.Has(start) {
				continue
			}
			slots = append(slots, Slot{
				DoctorID:   b.DoctorID,
				DoctorName: b.DoctorName,
				Location:   b.Location,
				Start:      start,
				End:        start.Add(duration),
			})
		}
	}
	return slots
}

// FilterByDoctor keeps blocks whose doctor matches the preference. When the
// preference matches no scheduled doctor, all blocks are returned unchanged.
func FilterByDoctor(blocks []Block, preferred string) []Block {
	want := normalizeDoctor(preferred)
	if want == "" {
		return blocks
	}

	var out []Block
	for _, b := range blocks {
		have := normalizeDoctor(b.DoctorName)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return blocks
	}
	return out
}

func normalizeDoctor(name string) string {
	name = strings.ToLower(name)
	for _, prefix := range []string{"dr.", "dr ", "doctor "} {
		name = strings.TrimPrefix(strings.TrimSpace(name), prefix)
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(name, ".", " ")), " ")
}
