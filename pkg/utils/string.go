package utils

// Truncate shortens s to at most maxRunes runes, appending "..." when it cuts.
// It counts runes rather than bytes so multi-byte text is never split.
func Truncate(s string, maxRunes int) string {
	if maxRunes < 0 {
		maxRunes = 0
	}

	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
