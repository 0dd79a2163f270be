package engine

import "strings"

const leakRun = 3

// ValidateHint rejects a hint that gives the word away, either whole or
// through any run of three consecutive letters. Comparison happens on
// normalized forms; an empty hint never leaks.
func ValidateHint(hint, word string) error {
	h, w := Normalize(hint), Normalize(word)
	if h == "" || w == "" {
		return nil
	}

	if strings.Contains(h, w) {
		return ErrHintWordIncluded
	}

	for i := 0; i+leakRun <= len(w); i++ {
		if strings.Contains(h, w[i:i+leakRun]) {
			return ErrHint3SeqIncluded
		}
	}
	return nil
}
