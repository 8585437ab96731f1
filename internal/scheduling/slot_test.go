package scheduling

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotDisplay(t *testing.T) {
	s := Slot{DoctorName: "Dr. Evelyn Reed", Start: at(19, 9, 0), End: at(19, 10, 0)}
	assert.Equal(t, "Dr. Evelyn Reed on Monday, October 19 at 9:00 AM", s.Display())

	s.Start = at(6, 14, 30)
	assert.Equal(t, "Dr. Evelyn Reed on Tuesday, October 06 at 2:30 PM", s.Display())
}

func TestParseDisplay_RoundTrip(t *testing.T) {
	s := Slot{DoctorName: "Dr. Evelyn Reed", Start: at(6, 14, 30), End: at(6, 15, 0)}

	parsed, err := ParseDisplay(s.Display(), 2026, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "Dr. Evelyn Reed", parsed.DoctorName)
	assert.True(t, parsed.Start.Equal(s.Start))
}

func TestParseDisplay_Lenient(t *testing.T) {
	parsed, err := ParseDisplay("Dr. Ito on Monday, October 19 at 10:30am", 2026, nil)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ito", parsed.DoctorName)
	assert.True(t, parsed.Start.Equal(at(19, 10, 30)))
}

func TestParseDisplay_Rejects(t *testing.T) {
	for _, text := range []string{"", "the first one", "Dr. Ito on someday at noon", "Dr. Ito on Monday, Octember 19 at 10:30 AM"} {
		_, err := ParseDisplay(text, 2026, time.UTC)
		assert.ErrorIs(t, err, ErrUnrecognizedSlot, text)
	}
}

func TestDisplayListShowsFirstFive(t *testing.T) {
	var slots []Slot
	for i := 0; i < 8; i++ {
		slots = append(slots, Slot{DoctorName: "Dr. Ito", Start: at(19, 9+i, 0), End: at(19, 10+i, 0)})
	}

	list := DisplayList(slots)
	lines := strings.Split(list, "\n")

	require.Len(t, lines, DisplayLimit)
	assert.Equal(t, "1. Dr. Ito on Monday, October 19 at 9:00 AM", lines[0])
	assert.True(t, strings.HasPrefix(lines[4], "5. "))
	assert.Len(t, Presented(slots[:3]), 3)
}

func TestSlotValidAndEqual(t *testing.T) {
	s := Slot{DoctorName: "Dr. Ito", Start: at(19, 9, 0), End: at(19, 10, 0)}
	assert.True(t, s.Valid())
	assert.False(t, Slot{DoctorName: "Dr. Ito", Start: at(19, 9, 0), End: at(19, 9, 0)}.Valid())
	assert.False(t, Slot{Start: at(19, 9, 0), End: at(19, 10, 0)}.Valid())

	assert.True(t, s.Equal(Slot{DoctorName: "dr. ito", Start: at(19, 9, 0)}))
	assert.False(t, s.Equal(Slot{DoctorName: "Dr. Ito", Start: at(19, 9, 30)}))
}
