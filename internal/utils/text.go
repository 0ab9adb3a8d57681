package utils

// Truncate shortens text to at most limit runes, replacing the tail with "..."
// when anything was cut. A non-positive limit yields the empty string.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
