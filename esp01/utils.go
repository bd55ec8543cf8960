package esp01

import "strings"

// lastLine returns the last non-empty line of an esp-01 answer,
// usually the interesting part (OK, ERROR, the banner...).
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, crlfStr), crlfStr)
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
