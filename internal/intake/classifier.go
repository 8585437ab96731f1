package intake

import (
	"strings"
	"unicode"
)

type Intent int

const (
	IntentUnclear Intent = iota
	IntentAffirm
	IntentDeny
)

func (i Intent) String() string {
	switch i {
	case IntentAffirm:
		return "affirm"
	case IntentDeny:
		return "deny"
	default:
		return "unclear"
	}
}

// IntentClassifier reads a yes/no answer to the confirmation summary.
type IntentClassifier interface {
	Classify(text string) Intent
}

// KeywordClassifier matches whole words and phrases, so "know" is not a "no"
// and "Dr. Wright" is not a "right". A reply that opens with a Leading word is
// a denial; otherwise any Affirm match wins over a Deny match, so "yes, no
// changes needed" confirms.
type KeywordClassifier struct {
	Leading []string
	Affirm  []string
	Deny    []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		Leading: []string{"no", "nope", "wrong", "incorrect"},
		Affirm:  []string{"yes", "yeah", "yep", "correct", "right", "confirm", "looks good"},
		Deny:    []string{"no", "wrong", "incorrect", "change", "update"},
	}
}

func (k *KeywordClassifier) Classify(text string) Intent {
	words := tokenize(text)
	if len(words) == 0 {
		return IntentUnclear
	}

	switch {
	case startsWithAny(words, k.Leading):
		return IntentDeny
	case containsAny(words, k.Affirm):
		return IntentAffirm
	case containsAny(words, k.Deny):
		return IntentDeny
	default:
		return IntentUnclear
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func containsAny(words []string, phrases []string) bool {
	for _, phrase := range phrases {
		want := strings.Fields(strings.ToLower(phrase))
		if len(want) == 0 {
			continue
		}
		for i := 0; i+len(want) <= len(words); i++ {
			if matchAt(words, i, want) {
				return true
			}
		}
	}
	return false
}

func startsWithAny(words []string, phrases []string) bool {
	for _, phrase := range phrases {
		want := strings.Fields(strings.ToLower(phrase))
		if len(want) > 0 && len(want) <= len(words) && matchAt(words, 0, want) {
			return true
		}
	}
	return false
}

func matchAt(words []string, i int, want []string) bool {
	for j, w := range want {
		if words[i+j] != w {
			return false
		}
	}
	return true
}
