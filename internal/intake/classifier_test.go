package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		text string
		want Intent
	}{
		{"yes", IntentAffirm},
		{"Yes, that's correct.", IntentAffirm},
		{"Looks good to me", IntentAffirm},
		{"CONFIRM", IntentAffirm},
		{"no", IntentDeny},
		{"No, the date of birth is wrong", IntentDeny},
		{"I need to update my doctor", IntentDeny},
		{"maybe", IntentUnclear},
		{"I don't know", IntentUnclear},
		{"Dr. Wright at Northside", IntentUnclear},
		{"yes but change the location", IntentAffirm},
		{"yes, no changes needed", IntentAffirm},
		{"Yes, that's correct, no changes needed", IntentAffirm},
		{"yes, nothing to update", IntentAffirm},
		{"Yes please, no problem", IntentAffirm},
		{"No, that's not right", IntentDeny},
		{"Wrong, the doctor should be Dr. Chen", IntentDeny},
		{"nope", IntentDeny},
		{"", IntentUnclear},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text), "intent %s", c.Classify(tt.text))
		})
	}
}
