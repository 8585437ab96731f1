package patient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		a, b    string
		atLeast int
		below   int
	}{
		{a: "John Smith", b: "John Smith", atLeast: 100},
		{a: "Jon Smith", b: "John Smith", atLeast: MatchThreshold},
		{a: "john smith", b: "JOHN SMITH", atLeast: 100},
		{a: "Smith, John", b: "John Smith", atLeast: 100},
		{a: "Mary O'Neil", b: "Mary ONeil", atLeast: MatchThreshold},
		{a: "Jane Doe", b: "John Smith", below: MatchThreshold},
		{a: "", b: "John Smith", below: 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"~"+tt.b, func(t *testing.T) {
			s := Score(tt.a, tt.b)
			if tt.atLeast > 0 {
				assert.GreaterOrEqual(t, s, tt.atLeast)
			}
			if tt.below > 0 {
				assert.Less(t, s, tt.below)
			}
			assert.LessOrEqual(t, s, 100)
		})
	}
}

func TestBestMatch(t *testing.T) {
	names := []string{"Jane Doe", "John Smith", "Johnny Smithers"}

	idx, score, ok := BestMatch("Jon Smith", names, MatchThreshold)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.GreaterOrEqual(t, score, MatchThreshold)

	_, _, ok = BestMatch("Zebulon Quartermaine", names, MatchThreshold)
	assert.False(t, ok)

	_, _, ok = BestMatch("John Smith", nil, MatchThreshold)
	assert.False(t, ok)
}
