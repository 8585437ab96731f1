package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hackgods/patient-intake-scheduling/internal/extract"
)

func TestMerge_NewValuesWinEmptyNeverErases(t *testing.T) {
	known := extract.PatientInfo{FullName: "Jane Doe", DateOfBirth: "1985-03-15"}
	fresh := extract.PatientInfo{DateOfBirth: "1985-03-16", PreferredDoctor: "Dr. Reed"}

	got := Merge(known, fresh)
	assert.Equal(t, extract.PatientInfo{FullName: "Jane Doe", DateOfBirth: "1985-03-16", PreferredDoctor: "Dr. Reed"}, got)
}

func TestMerge_Idempotent(t *testing.T) {
	known := extract.PatientInfo{FullName: "Jane Doe"}
	fresh := extract.PatientInfo{PreferredDoctor: "Dr. Reed", PreferredLocation: "Downtown"}

	once := Merge(known, fresh)
	twice := Merge(once, fresh)
	assert.Equal(t, once, twice)
}

func TestMerge_MonotonicCompleteness(t *testing.T) {
	info := extract.PatientInfo{FullName: "Jane Doe", DateOfBirth: "1985-03-15", PreferredDoctor: "Dr. Reed", PreferredLocation: "Downtown"}

	for _, fresh := range []extract.PatientInfo{{}, {FullName: "  "}, {PreferredLocation: ""}} {
		info = Merge(info, fresh)
		assert.True(t, Complete(info))
	}
	assert.Equal(t, "Jane Doe", info.FullName)
}

func TestMissingInfoMessage(t *testing.T) {
	tests := []struct {
		name string
		info extract.PatientInfo
		want string
	}{
		{
			name: "complete",
			info: extract.PatientInfo{FullName: "a", DateOfBirth: "b", PreferredDoctor: "c", PreferredLocation: "d"},
			want: "",
		},
		{
			name: "one",
			info: extract.PatientInfo{FullName: "a", DateOfBirth: "b", PreferredDoctor: "c"},
			want: "I still need your preferred location. Could you please provide that information?",
		},
		{
			name: "doctor and location",
			info: extract.PatientInfo{FullName: "a", DateOfBirth: "b"},
			want: "I still need your preferred doctor and your preferred location. Could you please provide that information?",
		},
		{
			name: "three",
			info: extract.PatientInfo{FullName: "a"},
			want: "I still need your date of birth, your preferred doctor, and your preferred location. Could you please provide that information?",
		},
		{
			name: "all",
			info: extract.PatientInfo{},
			want: "I still need your full name, your date of birth, your preferred doctor, and your preferred location. Could you please provide that information?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MissingInfoMessage(tt.info))
		})
	}
}
